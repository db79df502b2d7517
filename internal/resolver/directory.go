package resolver

import (
	"context"
	"sync"

	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
)

// Directory looks up compiled schemas by identifier.
//
// Find returns (nil, nil) when the directory does not hold the schema. An
// error means the lookup itself failed; the resolver warns and moves on.
type Directory interface {
	Find(ctx context.Context, id names.SchemaIdentifier) (*schema.Schema, error)
}

// DirectoryFunc adapts a function to a Directory.
type DirectoryFunc func(ctx context.Context, id names.SchemaIdentifier) (*schema.Schema, error)

// Find calls f.
func (f DirectoryFunc) Find(ctx context.Context, id names.SchemaIdentifier) (*schema.Schema, error) {
	return f(ctx, id)
}

// MapDirectory is an in-memory directory of compiled schemas. It is safe
// for concurrent use.
type MapDirectory struct {
	mu      sync.RWMutex
	schemas map[names.SchemaIdentifier]*schema.Schema
}

// NewMapDirectory creates a directory holding schemas.
func NewMapDirectory(schemas ...*schema.Schema) *MapDirectory {
	d := &MapDirectory{schemas: make(map[names.SchemaIdentifier]*schema.Schema, len(schemas))}
	for _, s := range schemas {
		d.schemas[s.Identifier()] = s
	}
	return d
}

// Put adds or replaces s.
func (d *MapDirectory) Put(s *schema.Schema) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.schemas[s.Identifier()] = s
}

// Find returns the schema with identifier id, if present.
func (d *MapDirectory) Find(_ context.Context, id names.SchemaIdentifier) (*schema.Schema, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.schemas[id], nil
}

// Registry is an ordered list of directories, first entry first. Directories
// may be added and removed at runtime; Resolve takes a snapshot per call.
type Registry struct {
	mu          sync.RWMutex
	directories []Directory
}

// NewRegistry creates a registry with directories in priority order.
func NewRegistry(directories ...Directory) *Registry {
	return &Registry{directories: append([]Directory(nil), directories...)}
}

// Add appends d at the lowest priority.
func (r *Registry) Add(d Directory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directories = append(r.directories, d)
}

// Remove removes d, reporting whether it was registered. Directories are
// compared with ==, so d must be comparable.
func (r *Registry) Remove(d Directory) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.directories {
		if existing == d {
			r.directories = append(r.directories[:i:i], r.directories[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns the directories in priority order.
func (r *Registry) Snapshot() []Directory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Directory(nil), r.directories...)
}

// Len returns the number of registered directories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.directories)
}
