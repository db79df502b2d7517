package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string { return f.name }
func (f *memoryFileInfo) Size() int64  { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode {
	if f.isDir {
		return 0755 | fs.ModeDir
	}
	return 0644
}
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	root    string
	files   map[string][]byte
	dirs    map[string]struct{}
	failing map[string]error
}

// NewMemoryFileSystem creates a new in-memory filesystem rooted at root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))
	return &MemoryFileSystem{
		root:    root,
		files:   make(map[string][]byte),
		dirs:    map[string]struct{}{root: {}},
		failing: make(map[string]error),
	}
}

func (m *MemoryFileSystem) abs(p string) string {
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "/") {
		p = path.Join(m.root, p)
	}
	return path.Clean(p)
}

// AddFile adds a file, creating parent directories.
func (m *MemoryFileSystem) AddFile(filePath string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	abs := m.abs(filePath)
	m.files[abs] = []byte(content)
	for dir := path.Dir(abs); ; dir = path.Dir(dir) {
		m.dirs[dir] = struct{}{}
		if dir == "/" || dir == "." || dir == m.root {
			break
		}
	}
}

// FailOpen makes every Open of filePath return err.
func (m *MemoryFileSystem) FailOpen(filePath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[m.abs(filePath)] = err
}

func (m *MemoryFileSystem) Open(filePath string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	abs := m.abs(filePath)
	if err, ok := m.failing[abs]; ok {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	content, ok := m.files[abs]
	if !ok {
		if _, isDir := m.dirs[abs]; isDir {
			return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
		}
		return nil, fmt.Errorf("failed to open %s: %w", filePath, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	abs := m.abs(dirPath)
	if _, ok := m.dirs[abs]; !ok {
		return nil, fmt.Errorf("failed to read directory %s: %w", dirPath, fs.ErrNotExist)
	}

	seen := make(map[string]FileInfo)
	for p, content := range m.files {
		if path.Dir(p) == abs {
			seen[path.Base(p)] = &memoryFileInfo{name: path.Base(p), size: int64(len(content))}
		}
	}
	for d := range m.dirs {
		if d != abs && path.Dir(d) == abs {
			seen[path.Base(d)] = &memoryFileInfo{name: path.Base(d), isDir: true}
		}
	}

	result := make([]FileInfo, 0, len(seen))
	for _, info := range seen {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (m *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	abs := m.abs(statPath)
	if content, ok := m.files[abs]; ok {
		return &memoryFileInfo{name: path.Base(abs), size: int64(len(content))}, nil
	}
	if _, ok := m.dirs[abs]; ok {
		return &memoryFileInfo{name: path.Base(abs), isDir: true}, nil
	}
	return nil, fmt.Errorf("path not found: %s: %w", statPath, fs.ErrNotExist)
}

func (m *MemoryFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}
