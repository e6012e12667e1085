// Package testflac writes minimal FLAC files for tests: the signature, a
// STREAMINFO block and optionally a VORBIS_COMMENT block, with no audio
// frames.
package testflac

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Stream describes the STREAMINFO to write
type Stream struct {
	SampleRate    int
	BitsPerSample int
	Channels      int
	TotalSamples  uint64
}

// CD is 16-bit 44.1 kHz stereo
var CD = Stream{SampleRate: 44100, BitsPerSample: 16, Channels: 2, TotalSamples: 44100 * 3}

// HiRes96 is 24-bit 96 kHz stereo
var HiRes96 = Stream{SampleRate: 96000, BitsPerSample: 24, Channels: 2, TotalSamples: 96000 * 3}

const (
	blockStreamInfo    = 0
	blockVorbisComment = 4
)

// Bytes encodes s and comments as a FLAC file
func Bytes(s Stream, comments map[string]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("fLaC")

	writeHeader(&buf, blockStreamInfo, 34, len(comments) == 0)
	binary.Write(&buf, binary.BigEndian, uint16(4096)) // min block size
	binary.Write(&buf, binary.BigEndian, uint16(4096)) // max block size
	buf.Write([]byte{0, 0, 0, 0, 0, 0})                // min/max frame size unknown
	packed := uint64(s.SampleRate)<<44 |
		uint64(s.Channels-1)<<41 |
		uint64(s.BitsPerSample-1)<<36 |
		s.TotalSamples&0xFFFFFFFFF
	binary.Write(&buf, binary.BigEndian, packed)
	buf.Write(make([]byte, 16)) // MD5

	if len(comments) > 0 {
		var body bytes.Buffer
		vendor := "testflac"
		binary.Write(&body, binary.LittleEndian, uint32(len(vendor)))
		body.WriteString(vendor)
		keys := make([]string, 0, len(comments))
		for k := range comments {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		binary.Write(&body, binary.LittleEndian, uint32(len(keys)))
		for _, k := range keys {
			entry := k + "=" + comments[k]
			binary.Write(&body, binary.LittleEndian, uint32(len(entry)))
			body.WriteString(entry)
		}
		writeHeader(&buf, blockVorbisComment, body.Len(), true)
		buf.Write(body.Bytes())
	}
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, typ byte, length int, last bool) {
	h := typ
	if last {
		h |= 0x80
	}
	buf.WriteByte(h)
	buf.Write([]byte{byte(length >> 16), byte(length >> 8), byte(length)})
}

// Write creates dir/name (and parents) holding a FLAC file
func Write(t testing.TB, path string, s Stream, comments map[string]string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, Bytes(s, comments), 0o644); err != nil {
		t.Fatalf("write flac: %v", err)
	}
	return path
}
