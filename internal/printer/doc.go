// Package printer renders audit results and delivers them to stdout or a file.
//
// It has three parts:
//   - Output mode registry: the closed set of modes json, html and domhtml,
//     with name/id lookups (ModeFromName, OutputMode.Name, ValidModeNames)
//   - Artifact builder: CreateOutput turns a result into the text for a mode.
//     HTML is delegated to a Renderer; JSON is serialized here.
//   - Delivery sink: Printer.Write writes the artifact and returns a Delivery
//     that resolves with the original result once the write has completed.
//
// # Destinations
//
// An empty destination path means stdout. In that case a warning is logged
// and, after the artifact is written, the delivery waits a short delay
// (DefaultStdoutDelay) before resolving so that asynchronous log lines on the
// terminal do not interleave with the artifact.
//
// A non-empty path is written with os.WriteFile (create or truncate). Missing
// parent directories are not created. Write errors are returned unchanged.
//
// # Errors
//
// Unknown modes fail with *InvalidModeError, which matches ErrInvalidMode.
// Renderer errors and file errors are passed through without wrapping; the
// printer never retries and never falls back to another destination.
package printer
