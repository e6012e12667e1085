package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Environment variables consulted by FromEnv.
const (
	EnvSox  = "FLACTRANSCODE_SOX"
	EnvFlac = "FLACTRANSCODE_FLAC"
	EnvLame = "FLACTRANSCODE_LAME"
	EnvJobs = "FLACTRANSCODE_JOBS"
)

// Tools names the external executables. Empty fields are looked up on PATH
// under their default names.
type Tools struct {
	Sox  string
	Flac string
	Lame string
}

// Config holds everything a run needs. It is passed explicitly to the
// service; nothing is read from globals after construction.
type Config struct {
	Tools Tools

	// Workers bounds the number of jobs running at once
	Workers int

	// OutputRoot is the directory receiving the per-profile output
	// directories. Empty means the parent of the source directory.
	OutputRoot string

	// CopyExtras copies cue sheets, logs and artwork alongside the outputs
	CopyExtras bool

	Verbose bool
}

// Default returns the built-in defaults
func Default() Config {
	return Config{
		Workers:    runtime.NumCPU(),
		CopyExtras: true,
	}
}

// FromEnv applies environment overrides on top of Default.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup(EnvSox); ok {
		cfg.Tools.Sox = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvFlac); ok {
		cfg.Tools.Flac = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLame); ok {
		cfg.Tools.Lame = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvJobs); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%s: invalid integer %q", EnvJobs, v)
		}
		cfg.Workers = n
	}
	return cfg, cfg.Validate()
}

// Validate checks the config for values no run can use
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
