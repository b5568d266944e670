package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/auditprint/internal/model"
)

// Job is one result to deliver. The CLI fills in the input fields; steps
// fill in the rest.
type Job struct {
	// Source names the input file, or "-" for stdin.
	Source string

	// Result is the decoded result. When nil, the load step reads Source.
	Result model.Result

	// Mode is the output mode name.
	Mode string

	// OutputPath is the destination file. Empty means stdout.
	OutputPath string

	// Destination is where the artifact was delivered, set by the deliver step.
	Destination string

	// RecordID is the history record id, set by the history step.
	RecordID int64

	// Err is the error of the first failing step.
	Err error

	// PerformedSteps lists the steps that completed, in order.
	PerformedSteps []string
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the Job as left
// by previous steps.
type Step interface {
	// Do executes the pipeline step.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It holds no per-job state, so one Pipeline may execute many jobs at once.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given steps and options.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: append([]Step(nil), steps...),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Execute runs all pipeline steps in sequence and stops at the first error.
// The error is also stored in job.Err.
//
// Context cancellation is checked before each step; steps that block
// handle cancellation themselves.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", job.Source,
				"reason", ctx.Err(),
			)
			job.Err = ctx.Err()
			return job.Err
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", job.Source,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", job.Source,
				"error", err,
			)
			job.Err = err
			return err
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
