// Package diag carries the diagnostics produced by the schema compiler,
// resolver and validator.
//
// Components never return user errors as Go errors. They publish
// Diagnostic values to a Sink and report success as a boolean. Every public
// entry point wraps the caller's sink with Safe so a misbehaving receiver
// cannot abort the accumulation loop.
package diag
