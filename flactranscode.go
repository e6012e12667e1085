// Package flactranscode transcodes a directory of FLAC files into 16-bit
// FLAC and MP3 copies, one sibling directory per output profile.
package flactranscode

import (
	"context"

	"github.com/Skryldev/flactranscode/application/usecase"
	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/Skryldev/flactranscode/infrastructure/flacmeta"
	"github.com/Skryldev/flactranscode/infrastructure/storage"
	"github.com/Skryldev/flactranscode/infrastructure/toolexec"
	"github.com/Skryldev/flactranscode/pkg/config"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
	"github.com/Skryldev/flactranscode/pkg/logger"
)

// Re-export types for convenient use by callers
type (
	Profile   = model.Profile
	Summary   = model.Summary
	JobResult = model.JobResult
	Config    = config.Config
)

// Re-export profile constants
const (
	ProfileFLAC16 = model.ProfileFLAC16
	ProfileMP3320 = model.ProfileMP3320
	ProfileMP3V0  = model.ProfileMP3V0
	ProfileMP3V2  = model.ProfileMP3V2
)

// Re-export helpers
var (
	ParseProfiles = model.ParseProfiles
	ExitCode      = pkgerrors.ExitCode
)

// Transcoder is the main entry point
type Transcoder struct {
	cfg config.Config
	log *logger.Logger
}

// New creates a Transcoder. A nil logger discards log output.
func New(cfg config.Config, log *logger.Logger) (*Transcoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.NewUsageError("%v", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Transcoder{cfg: cfg, log: log}, nil
}

// Run transcodes source into every profile. Profiles are checked first,
// then the external tools, then the source directory.
func (t *Transcoder) Run(ctx context.Context, source string, profiles []Profile) (*Summary, error) {
	if len(profiles) == 0 {
		return nil, pkgerrors.NewUsageError("at least one output profile is required")
	}

	tools, err := toolexec.Resolve(t.cfg.Tools, model.NeedsLame(profiles))
	if err != nil {
		return nil, err
	}

	svc, err := usecase.NewTranscodeService(usecase.Config{
		Runner:   toolexec.NewExecutor(t.log),
		Metadata: flacmeta.NewReader(),
		Storage:  storage.NewLocalStorage(),
		Tools:    tools,
		Logger:   t.log,
		Workers:  t.cfg.Workers,
	})
	if err != nil {
		return nil, err
	}

	return svc.Run(ctx, usecase.Request{
		Source:     source,
		OutputRoot: t.cfg.OutputRoot,
		Profiles:   profiles,
		CopyExtras: t.cfg.CopyExtras,
	})
}

// Close flushes the logger
func (t *Transcoder) Close() {
	_ = t.log.Sync()
}
