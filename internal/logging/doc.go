// Package logging provides concrete implementations of the ironpage.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: writes formatted messages to stderr with thread-safe output
//   - NullLogger: discards all messages (useful for testing)
//
// DiagnosticSink forwards compiler and validator diagnostics to a logger.
package logging
