// Package filesystem provides a read-only filesystem abstraction for
// schema source trees.
//
// Implementations:
//   - OSFileSystem: production implementation using the OS filesystem
//   - FSFileSystem: any fs.FS, used for embedded builtin schemas
//   - MemoryFileSystem: in-memory implementation for testing
//
// All implementations wrap fs.ErrNotExist for missing paths.
package filesystem
