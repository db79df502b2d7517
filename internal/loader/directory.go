package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
)

// Directory serves schemas to a resolver by compiling them on demand.
// A schema whose source is absent is reported as not found; a schema that
// exists but fails to compile is reported as an error, so the resolver
// treats the directory as failed for that lookup.
type Directory struct {
	mu     sync.Mutex
	loader *Loader
}

// NewDirectory wraps loader. The loader must not be used elsewhere while
// the directory is in use.
func NewDirectory(loader *Loader) *Directory {
	return &Directory{loader: loader}
}

// Find compiles id through the loader.
func (d *Directory) Find(ctx context.Context, id names.SchemaIdentifier) (*schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	saved := d.loader.ctx
	d.loader.ctx = ctx
	d.loader.quietRoot = true
	defer func() {
		d.loader.ctx = saved
		d.loader.quietRoot = false
	}()

	s, ok := d.loader.Load(names.SchemaIdentifier{}, id)
	if ok {
		return s, nil
	}
	if d.loader.lastAbsent {
		return nil, nil
	}
	return nil, fmt.Errorf("schema %s failed to compile", id)
}

func (d *Directory) String() string { return "loader" }
