package model

import (
	"fmt"
	"strings"
)

// Encoder names the external tool producing the final file
type Encoder string

const (
	EncoderFlac Encoder = "flac"
	EncoderLame Encoder = "lame"
)

// Profile is a named target output format
type Profile string

const (
	ProfileFLAC16 Profile = "flac16"
	ProfileMP3320 Profile = "mp3-320"
	ProfileMP3V0  Profile = "mp3-v0"
	ProfileMP3V2  Profile = "mp3-v2"
)

type profileSpec struct {
	label   string
	ext     string
	encoder Encoder
	opts    []string
}

var profiles = map[Profile]profileSpec{
	ProfileFLAC16: {label: "FLAC16", ext: ".flac", encoder: EncoderFlac, opts: []string{"--best"}},
	ProfileMP3320: {label: "MP3-320", ext: ".mp3", encoder: EncoderLame, opts: []string{"-h", "-b", "320", "--ignore-tag-errors"}},
	ProfileMP3V0:  {label: "V0", ext: ".mp3", encoder: EncoderLame, opts: []string{"-V", "0", "--vbr-new", "--ignore-tag-errors"}},
	ProfileMP3V2:  {label: "V2", ext: ".mp3", encoder: EncoderLame, opts: []string{"-V", "2", "--vbr-new", "--ignore-tag-errors"}},
}

// AllProfiles lists every known profile in canonical order
var AllProfiles = []Profile{ProfileFLAC16, ProfileMP3320, ProfileMP3V0, ProfileMP3V2}

// DefaultGroup is what "all" expands to
var DefaultGroup = []Profile{ProfileFLAC16, ProfileMP3320, ProfileMP3V0}

var aliases = map[string]Profile{
	"flac16":  ProfileFLAC16,
	"flac":    ProfileFLAC16,
	"mp3-320": ProfileMP3320,
	"320":     ProfileMP3320,
	"mp3-v0":  ProfileMP3V0,
	"v0":      ProfileMP3V0,
	"mp3-v2":  ProfileMP3V2,
	"v2":      ProfileMP3V2,
}

// Label is the suffix used in output directory names
func (p Profile) Label() string { return profiles[p].label }

// Ext is the output file extension, with leading dot
func (p Profile) Ext() string { return profiles[p].ext }

// Encoder reports which tool encodes this profile
func (p Profile) Encoder() Encoder { return profiles[p].encoder }

// EncoderOptions returns a copy of the profile's encoder flags
func (p Profile) EncoderOptions() []string {
	return append([]string(nil), profiles[p].opts...)
}

// IsMP3 reports whether the profile is encoded by lame
func (p Profile) IsMP3() bool { return p.Encoder() == EncoderLame }

// Valid reports whether p is a known profile
func (p Profile) Valid() bool {
	_, ok := profiles[p]
	return ok
}

func (p Profile) String() string { return string(p) }

// ParseProfile resolves a profile name or alias, case-insensitively
func ParseProfile(name string) (Profile, error) {
	if p, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown profile %q (want one of flac16, mp3-320, mp3-v0, mp3-v2, all)", name)
}

// ParseProfiles resolves a list of names. "all" expands to DefaultGroup.
// Duplicates are dropped, keeping first-appearance order.
func ParseProfiles(names []string) ([]Profile, error) {
	seen := make(map[Profile]bool)
	var out []Profile
	add := func(p Profile) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			for _, p := range DefaultGroup {
				add(p)
			}
			continue
		}
		p, err := ParseProfile(name)
		if err != nil {
			return nil, err
		}
		add(p)
	}
	return out, nil
}

// NeedsLame reports whether any profile requires the MP3 encoder
func NeedsLame(ps []Profile) bool {
	for _, p := range ps {
		if p.IsMP3() {
			return true
		}
	}
	return false
}
