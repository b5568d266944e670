// Package model defines the data structures shared across auditprint.
//
// This package contains the following main types:
//   - Result: The opaque audit result payload that is rendered and delivered
//   - AuditSummary: A typed, read-only view over a Lighthouse-style Result
//   - Rating: The pass/average/fail classification of a score
//
// Design decision: Result is kept as an untyped value (decoded JSON) rather
// than a struct. The printer treats it as inert payload and must serialize it
// back without losing fields it does not know about. Only the HTML report
// needs structure, and it asks for it through Summarize.
package model
