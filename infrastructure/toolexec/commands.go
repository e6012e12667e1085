package toolexec

import (
	"fmt"
	"strconv"

	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/Skryldev/flactranscode/domain/ports"
)

// DecodeCommand decodes src to 16-bit WAV on stdout. A non-zero
// resampleRate routes through sox to dither down and resample; otherwise
// flac decodes directly.
func DecodeCommand(t Tools, src string, resampleRate int) ports.Command {
	if resampleRate > 0 {
		return ports.Command{
			Path: t.Sox,
			Args: []string{
				src, "-G", "-b", strconv.Itoa(model.TargetBitDepth), "-t", "wav", "-",
				"rate", "-v", "-L", strconv.Itoa(resampleRate), "dither",
			},
		}
	}
	return ports.Command{
		Path: t.Flac,
		Args: []string{"-dcs", "--", src},
	}
}

// EncodeCommand encodes WAV from stdin into dst for profile p, writing tags
// when any are known.
func EncodeCommand(t Tools, p model.Profile, tags model.Tags, dst string) (ports.Command, error) {
	switch p.Encoder() {
	case model.EncoderFlac:
		args := append(p.EncoderOptions(), "-s", "-f")
		args = append(args, NewTagArgsBuilder(model.EncoderFlac).AddAll(tags).Build()...)
		args = append(args, "-o", dst, "-")
		return ports.Command{Path: t.Flac, Args: args}, nil

	case model.EncoderLame:
		args := append([]string{"-S"}, p.EncoderOptions()...)
		args = append(args, NewTagArgsBuilder(model.EncoderLame).AddAll(tags).Build()...)
		args = append(args, "-", dst)
		return ports.Command{Path: t.Lame, Args: args}, nil

	default:
		return ports.Command{}, fmt.Errorf("unsupported profile: %s", p)
	}
}

// TagArgsBuilder renders tags as encoder command-line flags
type TagArgsBuilder struct {
	encoder model.Encoder
	args    []string
}

func NewTagArgsBuilder(enc model.Encoder) *TagArgsBuilder {
	return &TagArgsBuilder{encoder: enc}
}

// add appends one field; lameFlag of the form "--tv" takes an ID3v2 frame
// in frame.
func (b *TagArgsBuilder) add(vorbis, lameFlag, frame, value string) *TagArgsBuilder {
	if value == "" {
		return b
	}
	switch b.encoder {
	case model.EncoderFlac:
		b.args = append(b.args, "-T", vorbis+"="+value)
	case model.EncoderLame:
		if frame != "" {
			b.args = append(b.args, lameFlag, frame+"="+value)
		} else {
			b.args = append(b.args, lameFlag, value)
		}
	}
	return b
}

func (b *TagArgsBuilder) AddAll(t model.Tags) *TagArgsBuilder {
	b.add("TITLE", "--tt", "", t.Title)
	b.add("ARTIST", "--ta", "", t.Artist)
	b.add("ALBUM", "--tl", "", t.Album)
	b.add("ALBUMARTIST", "--tv", "TPE2", t.AlbumArtist)
	b.add("DATE", "--ty", "", positive(t.Year))
	b.add("GENRE", "--tg", "", t.Genre)

	if b.encoder == model.EncoderLame {
		b.add("", "--tn", "", numberOf(t.Track, t.TrackTotal))
		b.add("", "--tv", "TPOS", numberOf(t.Disc, t.DiscTotal))
		return b
	}
	b.add("TRACKNUMBER", "", "", positive(t.Track))
	b.add("TRACKTOTAL", "", "", positive(t.TrackTotal))
	b.add("DISCNUMBER", "", "", positive(t.Disc))
	b.add("DISCTOTAL", "", "", positive(t.DiscTotal))
	return b
}

func (b *TagArgsBuilder) Build() []string {
	return b.args
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// numberOf renders "n/total" the way ID3 expects, or "n" without a total
func numberOf(n, total int) string {
	if n <= 0 {
		return ""
	}
	if total <= 0 {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%d/%d", n, total)
}
