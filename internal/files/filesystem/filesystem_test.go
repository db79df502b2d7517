package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// providers returns the same tree under each implementation.
func providers(t *testing.T) map[string]FileSystemProvider {
	t.Helper()

	mem := NewMemoryFileSystem("/schemas")
	mem.AddFile("com.io7m.a/1.0.xml", "<a/>")
	mem.AddFile("com.io7m.a/2.0.xml", "<b/>")
	mem.AddFile("com.io7m.b/1.0.xml", "<c/>")

	mapFS := fstest.MapFS{
		"root/com.io7m.a/1.0.xml": {Data: []byte("<a/>")},
		"root/com.io7m.a/2.0.xml": {Data: []byte("<b/>")},
		"root/com.io7m.b/1.0.xml": {Data: []byte("<c/>")},
	}

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "com.io7m.a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "com.io7m.b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com.io7m.a", "1.0.xml"), []byte("<a/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com.io7m.a", "2.0.xml"), []byte("<b/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com.io7m.b", "1.0.xml"), []byte("<c/>"), 0o644))

	return map[string]FileSystemProvider{
		"memory": mem,
		"fs":     NewFSFileSystem(mapFS, "root"),
		"os":     &rooted{base: dir, FileSystemProvider: NewOSFileSystem()},
	}
}

// rooted prefixes relative paths so the OS provider can share test cases.
type rooted struct {
	FileSystemProvider
	base string
}

func (r *rooted) path(p string) string { return filepath.Join(r.base, p) }

func (r *rooted) ReadDir(p string) ([]FileInfo, error) { return r.FileSystemProvider.ReadDir(r.path(p)) }
func (r *rooted) Stat(p string) (FileInfo, error)      { return r.FileSystemProvider.Stat(r.path(p)) }

func TestProviders_ReadFile(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			target := p.Join("com.io7m.a", "2.0.xml")
			if r, ok := p.(*rooted); ok {
				target = r.path(target)
			}
			content, err := ReadFile(p, target)
			require.NoError(t, err)
			assert.Equal(t, "<b/>", string(content))
		})
	}
}

func TestProviders_MissingIsNotExist(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			target := p.Join("com.io7m.z", "1.0.xml")
			if r, ok := p.(*rooted); ok {
				target = r.path(target)
			}
			_, err := p.Open(target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fs.ErrNotExist), err.Error())

			_, err = p.Stat("com.io7m.z")
			assert.True(t, errors.Is(err, fs.ErrNotExist))
		})
	}
}

func TestProviders_ReadDirSorted(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			entries, err := p.ReadDir(".")
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "com.io7m.a", entries[0].Name())
			assert.True(t, entries[0].IsDir())
			assert.Equal(t, "com.io7m.b", entries[1].Name())

			files, err := p.ReadDir("com.io7m.a")
			require.NoError(t, err)
			require.Len(t, files, 2)
			assert.Equal(t, "1.0.xml", files[0].Name())
			assert.False(t, files[0].IsDir())
		})
	}
}

func TestMemoryFileSystem_FailOpen(t *testing.T) {
	mem := NewMemoryFileSystem("/")
	mem.AddFile("x.xml", "<x/>")
	mem.FailOpen("x.xml", errors.New("disk on fire"))

	_, err := mem.Open("x.xml")
	require.Error(t, err)
	assert.False(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestMemoryFileSystem_OpenDirectory(t *testing.T) {
	mem := NewMemoryFileSystem("/r")
	mem.AddFile("d/x.xml", "<x/>")
	_, err := mem.Open("d")
	assert.Error(t, err)
}
