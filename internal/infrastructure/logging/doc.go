// Package logging provides structured logging for the Savant relay.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the relay.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Note: the relay's own log output is unrelated to the controller syslog
// the tailer reads. Nothing in the relay depends on the content of its own
// log lines.
package logging
