package log

import (
	"context"
	"log/slog"
)

// Logger is the logging capability consumed by the printer.
// tag is a short component label and msg is free text.
type Logger interface {
	Warn(tag, msg string)
	Log(tag, msg string)
}

// TagKey is the attribute key that carries the component tag.
const TagKey = "component"

// TaggedLogger adapts an *slog.Logger to Logger.
// Warn is logged at slog.LevelWarn and Log at slog.LevelInfo.
type TaggedLogger struct {
	logger *slog.Logger
}

// NewTaggedLogger creates a TaggedLogger. A nil logger uses slog.Default().
func NewTaggedLogger(logger *slog.Logger) *TaggedLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaggedLogger{logger: logger}
}

// Warn logs a warning for the component tag.
func (l *TaggedLogger) Warn(tag, msg string) {
	l.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, slog.String(TagKey, tag))
}

// Log logs an informational message for the component tag.
func (l *TaggedLogger) Log(tag, msg string) {
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, slog.String(TagKey, tag))
}

// Discard is a Logger that drops everything.
var Discard Logger = discard{}

type discard struct{}

func (discard) Warn(string, string) {}
func (discard) Log(string, string)  {}
