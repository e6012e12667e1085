package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/Skryldev/flactranscode/domain/ports"
	"github.com/Skryldev/flactranscode/infrastructure/toolexec"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
	"github.com/Skryldev/flactranscode/pkg/logger"
	"go.uber.org/zap"
)

// Pipeline turns one FLAC file into one output file: probe, decide on
// resampling, decode, encode.
type Pipeline struct {
	runner  ports.ToolRunner
	meta    ports.MetadataReader
	storage ports.StorageProvider
	tools   toolexec.Tools
	log     *logger.Logger
}

// NewPipeline creates a new transcode pipeline
func NewPipeline(runner ports.ToolRunner, meta ports.MetadataReader, storage ports.StorageProvider, tools toolexec.Tools, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		runner:  runner,
		meta:    meta,
		storage: storage,
		tools:   tools,
		log:     log,
	}
}

// Run executes the full pipeline for a job. Every failure is returned as a
// *errors.TranscodeError naming the file and profile. Logs go to the
// logger carried by ctx, if any.
func (p *Pipeline) Run(ctx context.Context, job model.Job) (err error) {
	start := time.Now()
	log := logger.FromContext(ctx, p.log)
	fail := func(msg string, cause error) *pkgerrors.TranscodeError {
		return pkgerrors.NewTranscodeError(job.SourcePath, job.Profile.String(), msg, cause)
	}

	info, err := p.meta.StreamInfo(ctx, job.SourcePath)
	if err != nil {
		return fail("cannot read FLAC stream info", err)
	}
	if info.Channels > 2 {
		return fail(fmt.Sprintf("%d channels", info.Channels), pkgerrors.ErrMultichannel)
	}
	rate, err := ResampleRate(info)
	if err != nil {
		return fail(fmt.Sprintf("cannot resample %d Hz", info.SampleRate), err)
	}

	tags, err := p.meta.Tags(ctx, job.SourcePath)
	if err != nil {
		log.Warn("reading tags failed, output will be untagged", zap.Error(err))
		tags = model.Tags{}
	}

	if err := p.storage.Prepare(ctx, job.OutputPath); err != nil {
		return fail("cannot prepare output path", err)
	}

	encode, err := toolexec.EncodeCommand(p.tools, job.Profile, tags, job.OutputPath)
	if err != nil {
		return fail("cannot build encoder command", err)
	}
	cmds := []ports.Command{toolexec.DecodeCommand(p.tools, job.SourcePath, rate), encode}

	log.Debug("transcoding",
		zap.Int("sample_rate", info.SampleRate),
		zap.Int("bits_per_sample", info.BitsPerSample),
		zap.Int("resample_rate", rate),
		zap.String("output", job.OutputPath),
	)

	defer func() {
		if err != nil && ctx.Err() == nil {
			if rmErr := p.storage.Remove(ctx, job.OutputPath); rmErr != nil {
				log.Warn("removing partial output failed", zap.Error(rmErr))
			}
		}
	}()

	results, err := p.runner.RunPipeline(ctx, cmds)
	if err != nil {
		return fail("cannot start transcode", err)
	}
	if failed := toolexec.FirstFailure(results); failed != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail("transcode interrupted", ctxErr)
		}
		cause := failed.Err
		if failed.BrokenPipe {
			cause = pkgerrors.ErrBrokenPipe
		}
		te := fail(fmt.Sprintf("%s failed", failed.Command.Path), cause)
		te.Command = append([]string{failed.Command.Path}, failed.Command.Args...)
		te.ExitCode = failed.ExitCode
		te.Stderr = failed.Stderr
		return te
	}

	ok, err := p.storage.Exists(ctx, job.OutputPath)
	if err != nil {
		return fail("cannot check output", err)
	}
	if !ok {
		return fail("encoder produced no output", nil)
	}

	if missing := p.checkTags(ctx, tags, job.OutputPath); len(missing) > 0 {
		return fail(fmt.Sprintf("output lacks %s", strings.Join(missing, ", ")), pkgerrors.ErrTagCheck)
	}

	log.Info("transcode complete", zap.Duration("took", time.Since(start)))
	return nil
}

// checkTags re-reads the output and lists the core tags present on the
// source but absent from the transcode.
func (p *Pipeline) checkTags(ctx context.Context, want model.Tags, output string) []string {
	if want.IsZero() {
		return nil
	}
	got, err := p.meta.Tags(ctx, output)
	if err != nil {
		return []string{"readable tags"}
	}
	var missing []string
	check := func(name string, inSource, inOutput bool) {
		if inSource && !inOutput {
			missing = append(missing, name)
		}
	}
	check("title", want.Title != "", got.Title != "")
	check("artist", want.Artist != "", got.Artist != "")
	check("album", want.Album != "", got.Album != "")
	check("track number", want.Track > 0, got.Track > 0)
	return missing
}

// ResampleRate returns the rate the decoder must resample to, or 0 when
// flac can decode directly. Anything deeper than 16 bits goes through
// sox for dithering; rates above 48 kHz come down to 44.1 or 48 kHz,
// whichever divides them.
func ResampleRate(info model.StreamInfo) (int, error) {
	if info.SampleRate <= model.MaxNativeSampleRate && info.BitsPerSample <= model.TargetBitDepth {
		return 0, nil
	}
	switch {
	case info.SampleRate <= model.MaxNativeSampleRate:
		return info.SampleRate, nil
	case info.SampleRate%44100 == 0:
		return 44100, nil
	case info.SampleRate%48000 == 0:
		return 48000, nil
	default:
		return 0, pkgerrors.ErrUnknownSampleRate
	}
}
