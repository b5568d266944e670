package pipeline

import (
	"context"
	"fmt"

	"github.com/nao1215/auditprint/internal/database"
	"github.com/nao1215/auditprint/internal/model"
	"github.com/nao1215/auditprint/internal/printer"
)

// Step names.
const (
	StepLoad    = "load"
	StepDeliver = "deliver"
	StepHistory = "history"
)

// StdinSource is the Source of a job read from standard input.
const StdinSource = "-"

// LoadStep reads the job's result from its source file.
// Jobs that already carry a result, and stdin jobs, are left unchanged.
type LoadStep struct{}

// Name implements Step.
func (LoadStep) Name() string { return StepLoad }

// Do implements Step.
func (LoadStep) Do(_ context.Context, job *Job) error {
	if job.Result != nil || job.Source == StdinSource {
		return nil
	}
	result, err := model.LoadResultFile(job.Source)
	if err != nil {
		return err
	}
	job.Result = result
	return nil
}

// Writer starts the delivery of a result.
// *printer.Printer satisfies it.
type Writer interface {
	Write(result model.Result, modeName, path string) (*printer.Delivery, error)
}

// DeliverStep writes the job's result with a Writer and waits for the
// delivery to resolve.
type DeliverStep struct {
	writer Writer
}

// NewDeliverStep creates a DeliverStep.
func NewDeliverStep(w Writer) *DeliverStep {
	return &DeliverStep{writer: w}
}

// Name implements Step.
func (s *DeliverStep) Name() string { return StepDeliver }

// Do implements Step.
//
// If ctx is cancelled while the artifact is being written, Do returns the
// context error; the write itself still runs to completion.
func (s *DeliverStep) Do(ctx context.Context, job *Job) error {
	d, err := s.writer.Write(job.Result, job.Mode, job.OutputPath)
	if err != nil {
		return fmt.Errorf("%s: %w", job.Source, err)
	}

	select {
	case <-d.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if _, err := d.Wait(); err != nil {
		return fmt.Errorf("%s: %w", job.Source, err)
	}
	job.Destination = printer.FileDestination(job.OutputPath).String()
	return nil
}

// Recorder stores delivered results.
// *database.HistoryDB satisfies it.
type Recorder interface {
	SaveResult(ctx context.Context, record *database.Record) error
}

// HistoryStep records a delivered job in the history database.
type HistoryStep struct {
	recorder Recorder
	runID    string
}

// NewHistoryStep creates a HistoryStep that tags every record with runID.
func NewHistoryStep(r Recorder, runID string) *HistoryStep {
	return &HistoryStep{recorder: r, runID: runID}
}

// Name implements Step.
func (s *HistoryStep) Name() string { return StepHistory }

// Do implements Step.
func (s *HistoryStep) Do(ctx context.Context, job *Job) error {
	record := &database.Record{
		RunID:       s.runID,
		Source:      job.Source,
		Mode:        job.Mode,
		Destination: job.Destination,
		Result:      job.Result,
	}
	if err := s.recorder.SaveResult(ctx, record); err != nil {
		return fmt.Errorf("failed to record delivery of %s: %w", job.Source, err)
	}
	job.RecordID = record.ID
	return nil
}

// DeliveryPipeline returns a pipeline that loads, delivers and, when
// recorder is non-nil, records each job.
func DeliveryPipeline(w Writer, recorder Recorder, runID string, opts ...Option) *Pipeline {
	steps := []Step{LoadStep{}, NewDeliverStep(w)}
	if recorder != nil {
		steps = append(steps, NewHistoryStep(recorder, runID))
	}
	return New(steps, opts...)
}
