package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/Skryldev/flactranscode/domain/model"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
	"github.com/Skryldev/flactranscode/pkg/logger"
	"go.uber.org/zap"
)

// WorkerPool manages concurrent job execution
type WorkerPool struct {
	pipeline *Pipeline
	workers  int
	log      *logger.Logger
}

// NewWorkerPool creates a new worker pool. workers <= 0 means 1.
func NewWorkerPool(p *Pipeline, workers int, log *logger.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WorkerPool{
		pipeline: p,
		workers:  workers,
		log:      log,
	}
}

// Run processes jobs concurrently and sends one result per job to the
// returned channel. The channel is closed when all jobs are complete.
// Jobs not yet started when ctx is canceled fail with ctx.Err().
func (wp *WorkerPool) Run(ctx context.Context, jobs []model.Job) <-chan model.JobResult {
	results := make(chan model.JobResult, len(jobs))

	go func() {
		defer close(results)

		var wg sync.WaitGroup
		semaphore := make(chan struct{}, wp.workers)

		for _, job := range jobs {
			if ctx.Err() != nil {
				results <- notStarted(ctx, job)
				continue
			}
			select {
			case <-ctx.Done():
				results <- notStarted(ctx, job)
				continue
			case semaphore <- struct{}{}:
			}
			if ctx.Err() != nil {
				<-semaphore
				results <- notStarted(ctx, job)
				continue
			}

			wg.Add(1)
			go func(j model.Job) {
				defer wg.Done()
				defer func() { <-semaphore }()

				start := time.Now()
				err := wp.processJob(ctx, j)
				results <- model.JobResult{
					Job:      j,
					Duration: time.Since(start),
					Err:      err,
				}
			}(job)
		}

		wg.Wait()
	}()

	return results
}

func (wp *WorkerPool) processJob(ctx context.Context, job model.Job) error {
	log := wp.log.With(
		zap.String("job_id", job.ID),
		zap.String("file", job.RelPath),
		zap.String("profile", job.Profile.String()),
	)

	log.Debug("processing job")

	err := wp.pipeline.Run(logger.WithContext(ctx, log), job)
	if err != nil {
		log.Error("job failed", zap.Error(err))
		return err
	}
	return nil
}

func notStarted(ctx context.Context, job model.Job) model.JobResult {
	return model.JobResult{
		Job: job,
		Err: pkgerrors.NewTranscodeError(job.SourcePath, job.Profile.String(), "not started", ctx.Err()),
	}
}
