package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Skryldev/flactranscode/application/pipeline"
	"github.com/Skryldev/flactranscode/application/planner"
	"github.com/Skryldev/flactranscode/application/scanner"
	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/Skryldev/flactranscode/domain/ports"
	"github.com/Skryldev/flactranscode/infrastructure/toolexec"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
	"github.com/Skryldev/flactranscode/pkg/logger"
)

// Request describes one run
type Request struct {
	Source     string
	OutputRoot string
	Profiles   []model.Profile
	CopyExtras bool
}

// TranscodeService runs scan, plan and transcode for a source directory
type TranscodeService struct {
	planner    *planner.Planner
	workerPool *pipeline.WorkerPool
	storage    ports.StorageProvider
	log        *logger.Logger
	newID      func() string
}

// Config holds TranscodeService configuration
type Config struct {
	Runner   ports.ToolRunner
	Metadata ports.MetadataReader
	Storage  ports.StorageProvider
	Tools    toolexec.Tools
	Logger   *logger.Logger
	Workers  int
}

// NewTranscodeService creates a new TranscodeService
func NewTranscodeService(cfg Config) (*TranscodeService, error) {
	if cfg.Runner == nil {
		return nil, errors.New("ToolRunner is required")
	}
	if cfg.Metadata == nil {
		return nil, errors.New("MetadataReader is required")
	}
	if cfg.Storage == nil {
		return nil, errors.New("StorageProvider is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	p := pipeline.NewPipeline(cfg.Runner, cfg.Metadata, cfg.Storage, cfg.Tools, log)
	return &TranscodeService{
		planner:    planner.New(cfg.Storage),
		workerPool: pipeline.NewWorkerPool(p, cfg.Workers, log),
		storage:    cfg.Storage,
		log:        log,
		newID:      uuid.NewString,
	}, nil
}

// Run transcodes every FLAC file under req.Source into every requested
// profile. Scan and plan failures abort the run; job failures are
// collected and returned together, after all other jobs have finished.
func (s *TranscodeService) Run(ctx context.Context, req Request) (*model.Summary, error) {
	start := time.Now()

	if len(req.Profiles) == 0 {
		return nil, pkgerrors.NewUsageError("at least one output profile is required")
	}
	for _, p := range req.Profiles {
		if !p.Valid() {
			return nil, pkgerrors.NewUsageError("unknown profile %q", p)
		}
	}

	source, err := scanner.CheckRoot(req.Source)
	if err != nil {
		return nil, err
	}
	files, err := scanner.Scan(source)
	if err != nil {
		return nil, err
	}

	s.log.Info("scanned source",
		zap.String("source", source),
		zap.Int("flac_files", len(files)),
		zap.Int("profiles", len(req.Profiles)),
	)

	plan, err := s.planner.Plan(ctx, source, req.OutputRoot, req.Profiles)
	if err != nil {
		return nil, fmt.Errorf("plan output directories: %w", err)
	}

	jobs, collisions, err := s.buildJobs(plan, files)
	if err != nil {
		return nil, err
	}

	summary := &model.Summary{Plan: plan, Total: len(jobs) + len(collisions)}
	var errs error
	for _, res := range collisions {
		summary.Failed = append(summary.Failed, res)
		errs = multierr.Append(errs, res.Err)
	}
	for res := range s.workerPool.Run(ctx, jobs) {
		if res.Err != nil {
			summary.Failed = append(summary.Failed, res)
			errs = multierr.Append(errs, res.Err)
			continue
		}
		summary.Succeeded++
	}

	if req.CopyExtras && ctx.Err() == nil {
		copied, err := s.copyExtras(ctx, plan)
		summary.Extras = copied
		summary.ExtrasFailed = len(multierr.Errors(err))
		errs = multierr.Append(errs, err)
	}

	summary.Elapsed = time.Since(start)
	s.log.Info("run finished",
		zap.Int("jobs", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", len(summary.Failed)),
		zap.Int("extras_copied", summary.Extras),
		zap.Int("extras_failed", summary.ExtrasFailed),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, errs
}

// buildJobs pairs every file with every output directory. A file whose
// output path is already claimed by an earlier file, e.g. "a?.flac" next
// to "a_.flac", is not run and comes back as a failed result instead.
func (s *TranscodeService) buildJobs(plan model.Plan, files []string) ([]model.Job, []model.JobResult, error) {
	jobs := make([]model.Job, 0, len(files)*len(plan.Dirs))
	var collisions []model.JobResult
	claimed := make(map[string]string, cap(jobs))
	for _, f := range files {
		rel, err := filepath.Rel(plan.SourceRoot, f)
		if err != nil {
			return nil, nil, fmt.Errorf("relative path of %s: %w", f, err)
		}
		for _, dir := range plan.Dirs {
			job := model.Job{
				ID:         s.newID(),
				SourcePath: f,
				RelPath:    rel,
				Profile:    dir.Profile,
				OutputPath: planner.OutputPath(dir, rel),
			}
			if owner, ok := claimed[job.OutputPath]; ok {
				s.log.Warn("output path collision",
					zap.String("file", rel),
					zap.String("claimed_by", owner),
					zap.String("output", job.OutputPath),
				)
				collisions = append(collisions, model.JobResult{
					Job: job,
					Err: pkgerrors.NewTranscodeError(f, dir.Profile.String(),
						fmt.Sprintf("output %s already written from %s", filepath.Base(job.OutputPath), owner),
						pkgerrors.ErrOutputCollision),
				})
				continue
			}
			claimed[job.OutputPath] = rel
			jobs = append(jobs, job)
		}
	}
	return jobs, collisions, nil
}

// copyExtras mirrors cue sheets, logs and artwork into every output
// directory. A failed copy is recorded and the rest continue.
func (s *TranscodeService) copyExtras(ctx context.Context, plan model.Plan) (int, error) {
	extras, err := scanner.ScanExtras(plan.SourceRoot)
	if err != nil {
		return 0, pkgerrors.NewCopyError(plan.SourceRoot, "cannot scan companion files", err)
	}

	var (
		copied int
		errs   error
	)
	for _, src := range extras {
		rel, err := filepath.Rel(plan.SourceRoot, src)
		if err != nil {
			errs = multierr.Append(errs, pkgerrors.NewCopyError(src, "cannot resolve companion file", err))
			continue
		}
		for _, dir := range plan.Dirs {
			dst := filepath.Join(dir.Path, rel)
			if err := s.storage.CopyFile(ctx, src, dst); err != nil {
				s.log.Warn("copy extra failed", zap.String("file", rel), zap.Error(err))
				errs = multierr.Append(errs, pkgerrors.NewCopyError(rel, "copy to "+dir.Path+" failed", err))
				continue
			}
			copied++
		}
	}
	return copied, errs
}
