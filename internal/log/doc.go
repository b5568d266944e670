// Package log provides the logging facility used by auditprint.
//
// It has two layers:
//   - SecureHandler: an slog.Handler wrapper that redacts credentials before
//     they reach the log output
//   - Logger: the narrow tag/message interface consumed by the printer, with
//     TaggedLogger adapting any *slog.Logger to it
//
// # Redaction
//
// Audit results routinely carry URLs, and those URLs sometimes carry secrets
// (basic-auth userinfo, access tokens in the query string). SecureHandler
// masks:
//   - attributes whose key names a credential (authorization, cookie, token, ...)
//   - string values that look like bearer/basic credentials or JWTs
//   - the userinfo and credential query parameters of URL-shaped values
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, log.LevelFor(verbose, quiet))
//	slog.SetDefault(logger)
//
//	p := printer.New(renderer, printer.WithLogger(log.NewTaggedLogger(logger)))
package log
