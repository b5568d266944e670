// Package database provides SQLite-based storage for auditprint.
//
// This package implements the HistoryDB, which records every delivered
// result together with its output mode, destination, content digest, and
// the batch run it belonged to. Stored results can be listed and printed
// again later.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// history is a single local file and the CGO-free driver keeps the binary
// easy to cross-compile.
package database
