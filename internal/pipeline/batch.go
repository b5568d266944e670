package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of jobs delivered at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchWriter delivers many jobs through one Pipeline.
// It uses errgroup to manage goroutines and respect the concurrency limit.
type BatchWriter struct {
	// pipeline is executed once per job.
	pipeline *Pipeline

	// concurrency is the maximum number of concurrent deliveries.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchWriter.
type BatchOption func(*BatchWriter)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchWriter) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent deliveries.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchWriter) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchWriter creates a new BatchWriter.
func NewBatchWriter(p *Pipeline, opts ...BatchOption) *BatchWriter {
	bw := &BatchWriter{
		pipeline:    p,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bw)
	}

	if bw.logger == nil {
		bw.logger = slog.Default()
	}

	return bw
}

// WriteAll delivers every job and returns them in input order.
//
// A failing job does not stop the others; its error is stored in Job.Err.
// The returned error is non-nil only when ctx was cancelled.
func (bw *BatchWriter) WriteAll(ctx context.Context, jobs []*Job) ([]*Job, error) {
	return jobs, bw.WriteAllWithCallback(ctx, jobs, nil)
}

// WriteAllWithCallback is WriteAll with a callback for each finished job.
//
// The callback receives the job and its index in jobs. It is called from
// the goroutine that finished the job, so it must be safe for concurrent use.
func (bw *BatchWriter) WriteAllWithCallback(ctx context.Context, jobs []*Job, callback func(job *Job, index int)) error {
	bw.logger.Debug("starting batch delivery",
		"total_jobs", len(jobs),
		"concurrency", bw.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bw.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				job.Err = ctx.Err()
				return job.Err
			default:
			}

			err := bw.pipeline.Execute(ctx, job)
			if callback != nil {
				callback(job, i)
			}

			if err != nil {
				bw.logger.Warn("delivery failed",
					"source", job.Source,
					"error", err,
				)
				// Other jobs keep running; the error stays on the job.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()

	bw.logger.Debug("batch delivery complete",
		"total_jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)

	return err
}

// Errors joins the errors of all failed jobs, or returns nil.
func Errors(jobs []*Job) error {
	var errs []error
	for _, job := range jobs {
		if job.Err != nil {
			errs = append(errs, job.Err)
		}
	}
	return errors.Join(errs...)
}
