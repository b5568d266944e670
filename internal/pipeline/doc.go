// Package pipeline delivers audit results through a sequence of steps.
//
// Each input becomes a Job that passes through the steps of a Pipeline:
// loading the result, writing it with the printer, and optionally recording
// the delivery in the history database. Each step receives the Job and can
// fill in its fields.
//
// Design decision: We keep loading, delivery and history as separate steps
// so the CLI can assemble only what a command needs (reprinting from history
// skips the load step, plain printing skips the history step).
//
// BatchWriter runs one Pipeline over many jobs with concurrency control
// using errgroup.
package pipeline
