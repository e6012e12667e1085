package toolexec

import (
	"os/exec"

	"github.com/Skryldev/flactranscode/pkg/config"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
)

// Default executable names looked up on PATH.
const (
	DefaultSox  = "sox"
	DefaultFlac = "flac"
	DefaultLame = "lame"
)

// Tools holds resolved executable paths
type Tools struct {
	Sox  string
	Flac string
	Lame string
}

// Resolve locates every tool a run needs. lame is only required when an
// MP3 profile is selected.
func Resolve(cfg config.Tools, needLame bool) (Tools, error) {
	var (
		t   Tools
		err error
	)
	if t.Sox, err = lookup(cfg.Sox, DefaultSox); err != nil {
		return Tools{}, err
	}
	if t.Flac, err = lookup(cfg.Flac, DefaultFlac); err != nil {
		return Tools{}, err
	}
	if needLame {
		if t.Lame, err = lookup(cfg.Lame, DefaultLame); err != nil {
			return Tools{}, err
		}
	}
	return t, nil
}

func lookup(configured, fallback string) (string, error) {
	name := configured
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", pkgerrors.NewToolMissingError(name, err)
	}
	return path, nil
}
