package config

import "errors"

// Configuration validation errors returned by Config.Validate and ApplyFile.
// An invalid mode is reported with printer.ErrInvalidMode instead.
var (
	// ErrInvalidStdoutDelay is returned when the stdout delay is negative.
	ErrInvalidStdoutDelay = errors.New("invalid stdout delay: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConflictingOutputs is returned when both an output path and an
	// output directory are set.
	ErrConflictingOutputs = errors.New("conflicting outputs: --output-path and --output-dir cannot be used together")
)
