package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystemProvider gives read access to schema source trees.
//
// Every implementation reports a missing path with an error wrapping
// fs.ErrNotExist, so callers can tell absence apart from I/O failure.
type FileSystemProvider interface {
	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)

	// ReadDir returns the entries of the directory at path, sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)

	// Join joins path elements using the provider's separator.
	Join(elem ...string) string
}

// ReadFile reads the whole file at path from provider.
func ReadFile(provider FileSystemProvider, path string) ([]byte, error) {
	r, err := provider.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
