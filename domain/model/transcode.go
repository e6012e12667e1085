package model

import "time"

// MaxNativeSampleRate is the highest rate kept as-is. Anything above it is
// downsampled.
const MaxNativeSampleRate = 48000

// TargetBitDepth is the bit depth of every output
const TargetBitDepth = 16

// StreamInfo holds the FLAC STREAMINFO fields used for planning
type StreamInfo struct {
	SampleRate    int
	BitsPerSample int
	Channels      int
	TotalSamples  uint64
}

// Duration of the stream, zero if unknown
func (s StreamInfo) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(s.TotalSamples) * time.Second / time.Duration(s.SampleRate)
}

// Tags holds the metadata carried over from the source file
type Tags struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Year        int
	Track       int
	TrackTotal  int
	Disc        int
	DiscTotal   int
	Genre       string
}

// IsZero reports whether no tag is set
func (t Tags) IsZero() bool { return t == Tags{} }

// OutputDir is a planned per-profile output directory
type OutputDir struct {
	Profile Profile
	Path    string
}

// Plan is the set of output directories for one source directory
type Plan struct {
	SourceRoot string
	OutputRoot string
	Dirs       []OutputDir
}

// Job is one (source file, profile) pair
type Job struct {
	ID         string
	SourcePath string
	// RelPath is SourcePath relative to the source root
	RelPath    string
	Profile    Profile
	OutputPath string
}

// JobResult holds the outcome of a job
type JobResult struct {
	Job      Job
	Duration time.Duration
	Err      error
}

// Summary reports what a run did
type Summary struct {
	Plan      Plan
	Total     int
	Succeeded int
	Failed    []JobResult
	Extras    int
	// ExtrasFailed counts companion-file copies that failed.
	ExtrasFailed int
	Elapsed      time.Duration
}
