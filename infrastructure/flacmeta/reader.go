package flacmeta

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/mewkiz/flac"

	"github.com/Skryldev/flactranscode/domain/model"
)

// Reader implements ports.MetadataReader
type Reader struct{}

// NewReader creates a new FLAC metadata reader
func NewReader() *Reader {
	return &Reader{}
}

// StreamInfo parses the STREAMINFO block. Zero-byte and non-FLAC files fail.
func (r *Reader) StreamInfo(_ context.Context, path string) (model.StreamInfo, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return model.StreamInfo{}, fmt.Errorf("parse FLAC stream info: %w", err)
	}
	defer stream.Close()

	si := stream.Info
	return model.StreamInfo{
		SampleRate:    int(si.SampleRate),
		BitsPerSample: int(si.BitsPerSample),
		Channels:      int(si.NChannels),
		TotalSamples:  si.NSamples,
	}, nil
}

// Tags reads the Vorbis comments of a FLAC file, or the ID3 tag of an MP3
func (r *Reader) Tags(_ context.Context, path string) (model.Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Tags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return model.Tags{}, fmt.Errorf("read tags: %w", err)
	}
	if ft := m.FileType(); ft != tag.FLAC && ft != tag.MP3 {
		return model.Tags{}, fmt.Errorf("read tags: unexpected file type %s", m.FileType())
	}

	track, trackTotal := m.Track()
	disc, discTotal := m.Disc()
	return model.Tags{
		Title:       strings.TrimSpace(m.Title()),
		Artist:      strings.TrimSpace(m.Artist()),
		Album:       strings.TrimSpace(m.Album()),
		AlbumArtist: strings.TrimSpace(m.AlbumArtist()),
		Year:        m.Year(),
		Track:       track,
		TrackTotal:  trackTotal,
		Disc:        disc,
		DiscTotal:   discTotal,
		Genre:       strings.TrimSpace(m.Genre()),
	}, nil
}
