package toolexec

import (
	"testing"

	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTools = Tools{Sox: "/bin/sox", Flac: "/bin/flac", Lame: "/bin/lame"}

func TestDecodeCommand(t *testing.T) {
	cmd := DecodeCommand(testTools, "/in/a.flac", 0)
	assert.Equal(t, "/bin/flac", cmd.Path)
	assert.Equal(t, []string{"-dcs", "--", "/in/a.flac"}, cmd.Args)

	cmd = DecodeCommand(testTools, "/in/a.flac", 44100)
	assert.Equal(t, "/bin/sox", cmd.Path)
	assert.Equal(t, []string{
		"/in/a.flac", "-G", "-b", "16", "-t", "wav", "-",
		"rate", "-v", "-L", "44100", "dither",
	}, cmd.Args)
}

func TestEncodeCommandFlac(t *testing.T) {
	cmd, err := EncodeCommand(testTools, model.ProfileFLAC16, model.Tags{}, "/out/a.flac")
	require.NoError(t, err)
	assert.Equal(t, "/bin/flac", cmd.Path)
	assert.Equal(t, []string{"--best", "-s", "-f", "-o", "/out/a.flac", "-"}, cmd.Args)
}

func TestEncodeCommandLame(t *testing.T) {
	tests := []struct {
		profile model.Profile
		want    []string
	}{
		{model.ProfileMP3320, []string{"-S", "-h", "-b", "320", "--ignore-tag-errors", "-", "/out/a.mp3"}},
		{model.ProfileMP3V0, []string{"-S", "-V", "0", "--vbr-new", "--ignore-tag-errors", "-", "/out/a.mp3"}},
		{model.ProfileMP3V2, []string{"-S", "-V", "2", "--vbr-new", "--ignore-tag-errors", "-", "/out/a.mp3"}},
	}
	for _, tt := range tests {
		t.Run(tt.profile.String(), func(t *testing.T) {
			cmd, err := EncodeCommand(testTools, tt.profile, model.Tags{}, "/out/a.mp3")
			require.NoError(t, err)
			assert.Equal(t, "/bin/lame", cmd.Path)
			assert.Equal(t, tt.want, cmd.Args)
		})
	}
}

func TestEncodeCommandUnknownProfile(t *testing.T) {
	_, err := EncodeCommand(testTools, model.Profile("ogg"), model.Tags{}, "/out/a.ogg")
	assert.ErrorContains(t, err, "unsupported profile")
}

func TestTagArgs(t *testing.T) {
	tags := model.Tags{
		Title:       "Song",
		Artist:      "Band",
		Album:       "Record",
		AlbumArtist: "Band & Friends",
		Year:        1999,
		Track:       3,
		TrackTotal:  12,
		Disc:        1,
		Genre:       "Rock",
	}

	flac := NewTagArgsBuilder(model.EncoderFlac).AddAll(tags).Build()
	assert.Equal(t, []string{
		"-T", "TITLE=Song",
		"-T", "ARTIST=Band",
		"-T", "ALBUM=Record",
		"-T", "ALBUMARTIST=Band & Friends",
		"-T", "DATE=1999",
		"-T", "GENRE=Rock",
		"-T", "TRACKNUMBER=3",
		"-T", "TRACKTOTAL=12",
		"-T", "DISCNUMBER=1",
	}, flac)

	lame := NewTagArgsBuilder(model.EncoderLame).AddAll(tags).Build()
	assert.Equal(t, []string{
		"--tt", "Song",
		"--ta", "Band",
		"--tl", "Record",
		"--tv", "TPE2=Band & Friends",
		"--ty", "1999",
		"--tg", "Rock",
		"--tn", "3/12",
		"--tv", "TPOS=1",
	}, lame)

	assert.Empty(t, NewTagArgsBuilder(model.EncoderLame).AddAll(model.Tags{}).Build())
}
