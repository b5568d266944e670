// Package main provides the entry point for the auditprint CLI.
//
// auditprint renders audit results (Lighthouse-style JSON documents) as
// pretty-printed JSON or standalone HTML reports and writes them to stdout
// or a file.
//
// Usage:
//
//	auditprint print result.json
//	auditprint print -m json -o report.json result.json
//	auditprint print --output-dir reports/ a.json b.json c.json
//
// See --help for all available options.
package main

// main is the entry point for auditprint.
func main() {
	Execute()
}
