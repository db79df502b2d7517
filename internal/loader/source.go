package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/io7m/ironpage-sub000/internal/files/filesystem"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// ErrNotFound is returned by a Source that has no source for an identifier.
var ErrNotFound = errors.New("schema source not found")

// Source supplies schema source text by identifier.
//
// Open returns an error wrapping ErrNotFound or fs.ErrNotExist when the
// source does not exist; any other error is treated as an I/O failure.
type Source interface {
	Open(ctx context.Context, id names.SchemaIdentifier) (uri string, r io.ReadCloser, err error)
}

// IsNotFound reports whether err means the source is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// Lister is implemented by sources that can enumerate what they hold.
type Lister interface {
	List(ctx context.Context) ([]names.SchemaIdentifier, error)
}

// FileSource reads "<root>/<schema name>/<major>.<minor>.xml" from each
// root in turn.
type FileSource struct {
	provider filesystem.FileSystemProvider
	roots    []string
}

// NewFileSource creates a source over roots, searched in order.
func NewFileSource(provider filesystem.FileSystemProvider, roots ...string) *FileSource {
	return &FileSource{provider: provider, roots: append([]string(nil), roots...)}
}

// PathOf returns the path of id's source under root.
func (s *FileSource) PathOf(root string, id names.SchemaIdentifier) string {
	return s.provider.Join(root, string(id.Name()), id.VersionString()+ironpage.SchemaFileExtension)
}

func (s *FileSource) Open(ctx context.Context, id names.SchemaIdentifier) (string, io.ReadCloser, error) {
	for _, root := range s.roots {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		p := s.PathOf(root, id)
		r, err := s.provider.Open(p)
		if err == nil {
			return p, r, nil
		}
		if !IsNotFound(err) {
			return p, nil, err
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

var versionFilePattern = regexp.MustCompile(`^([0-9]+)\.([0-9]+)` + regexp.QuoteMeta(ironpage.SchemaFileExtension) + `$`)

// List enumerates every schema found under the roots, sorted and without
// duplicates. Entries that do not follow the layout are skipped.
func (s *FileSource) List(ctx context.Context) ([]names.SchemaIdentifier, error) {
	seen := make(map[names.SchemaIdentifier]struct{})
	for _, root := range s.roots {
		dirs, err := s.provider.ReadDir(root)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to list schema root %s: %w", root, err)
		}
		for _, dir := range dirs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			name, err := names.NewSchemaName(dir.Name())
			if !dir.IsDir() || err != nil {
				continue
			}
			files, err := s.provider.ReadDir(s.provider.Join(root, dir.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to list schema directory %s: %w", dir.Name(), err)
			}
			for _, f := range files {
				m := versionFilePattern.FindStringSubmatch(f.Name())
				if f.IsDir() || m == nil {
					continue
				}
				major, _ := names.ParseVersion(m[1])
				minor, _ := names.ParseVersion(m[2])
				id, err := names.NewSchemaIdentifier(name, major, minor)
				if err != nil {
					continue
				}
				seen[id] = struct{}{}
			}
		}
	}
	return sortedIdentifiers(seen), nil
}

// ChainSource tries each source in order. The first source that has the
// schema wins; a failing source stops the search.
type ChainSource []Source

func (c ChainSource) Open(ctx context.Context, id names.SchemaIdentifier) (string, io.ReadCloser, error) {
	for _, s := range c {
		uri, r, err := s.Open(ctx, id)
		if err == nil {
			return uri, r, nil
		}
		if !IsNotFound(err) {
			return uri, nil, err
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List merges the listings of every member that implements Lister.
func (c ChainSource) List(ctx context.Context) ([]names.SchemaIdentifier, error) {
	seen := make(map[names.SchemaIdentifier]struct{})
	for _, s := range c {
		lister, ok := s.(Lister)
		if !ok {
			continue
		}
		ids, err := lister.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	return sortedIdentifiers(seen), nil
}

// MapSource serves sources held in memory, keyed by identifier.
type MapSource map[names.SchemaIdentifier]string

func (m MapSource) Open(_ context.Context, id names.SchemaIdentifier) (string, io.ReadCloser, error) {
	text, ok := m[id]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return "memory:" + id.String(), io.NopCloser(strings.NewReader(text)), nil
}

func (m MapSource) List(context.Context) ([]names.SchemaIdentifier, error) {
	seen := make(map[names.SchemaIdentifier]struct{}, len(m))
	for id := range m {
		seen[id] = struct{}{}
	}
	return sortedIdentifiers(seen), nil
}

func sortedIdentifiers(set map[names.SchemaIdentifier]struct{}) []names.SchemaIdentifier {
	out := make([]names.SchemaIdentifier, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}
