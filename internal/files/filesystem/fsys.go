package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// FSFileSystem implements FileSystemProvider over any fs.FS, typically an
// embed.FS holding builtin schemas. Paths always use forward slashes and
// are interpreted relative to root.
type FSFileSystem struct {
	fsys fs.FS
	root string
}

// NewFSFileSystem wraps fsys, treating root as the top of the tree.
func NewFSFileSystem(fsys fs.FS, root string) *FSFileSystem {
	return &FSFileSystem{fsys: fsys, root: path.Clean(root)}
}

func (p *FSFileSystem) resolve(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "/")
	return path.Clean(path.Join(p.root, name))
}

func (p *FSFileSystem) Open(name string) (io.ReadCloser, error) {
	f, err := p.fsys.Open(p.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("path is a directory, not a file: %s", name)
	}
	return f, nil
}

func (p *FSFileSystem) ReadDir(name string) ([]FileInfo, error) {
	entries, err := fs.ReadDir(p.fsys, p.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", name, err)
	}
	result := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to get file info for %s: %w", entry.Name(), err)
		}
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (p *FSFileSystem) Stat(name string) (FileInfo, error) {
	info, err := fs.Stat(p.fsys, p.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %s: %w", name, err)
	}
	return info, nil
}

func (p *FSFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}
