package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/graph"
	"github.com/io7m/ironpage-sub000/internal/logging"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// ResolvedSchemaSet is the import closure of one request: one schema per
// name plus the graph of imports between them.
type ResolvedSchemaSet struct {
	Schemas map[names.SchemaName]*schema.Schema
	Graph   *graph.DAG[names.SchemaIdentifier]
}

// Sorted returns the schemas ordered by name.
func (s *ResolvedSchemaSet) Sorted() []*schema.Schema {
	out := make([]*schema.Schema, 0, len(s.Schemas))
	for _, sc := range s.Schemas {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier().Compare(out[j].Identifier()) < 0 })
	return out
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for lookup tracing and panicking receivers.
func WithLogger(logger ironpage.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithConcurrentLookup queries every directory at once for each schema.
// The highest priority directory that has the schema still wins.
func WithConcurrentLookup() Option {
	return func(r *Resolver) { r.concurrent = true }
}

// Resolver resolves import closures against a registry. It keeps no state
// between calls and is safe for concurrent use.
type Resolver struct {
	registry   *Registry
	logger     ironpage.Logger
	concurrent bool
}

// New creates a resolver over registry.
func New(registry *Registry, opts ...Option) *Resolver {
	r := &Resolver{registry: registry, logger: logging.NewNullLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the closure of imports. It returns false if any error
// diagnostic was published.
func (r *Resolver) Resolve(
	ctx context.Context,
	imports map[names.SchemaName]names.SchemaIdentifier,
	sink diag.Sink,
) (*ResolvedSchemaSet, bool) {
	w := &walk{
		ctx:         ctx,
		resolver:    r,
		sink:        &diag.Tracker{Delegate: diag.Safe(sink, r.logger)},
		directories: r.registry.Snapshot(),
		resolved:    make(map[names.SchemaName]*schema.Schema),
		graph:       graph.New[names.SchemaIdentifier](),
	}

	rootNames := make([]names.SchemaName, 0, len(imports))
	for name := range imports {
		rootNames = append(rootNames, name)
	}
	sort.Slice(rootNames, func(i, j int) bool { return rootNames[i] < rootNames[j] })

	for _, name := range rootNames {
		id := imports[name]
		if id.Name() != name {
			w.sink.Receive(diag.Errorf(diag.SchemaNotFound,
				"Root import %s is registered under the name %s", id, name).
				With("target", id.String()))
			continue
		}
		w.visit(nil, id)
	}

	if w.sink.Failed() {
		return nil, false
	}
	return &ResolvedSchemaSet{Schemas: w.resolved, Graph: w.graph}, true
}

// walk is the state of one Resolve call.
type walk struct {
	ctx         context.Context
	resolver    *Resolver
	sink        *diag.Tracker
	directories []Directory
	resolved    map[names.SchemaName]*schema.Schema
	graph       *graph.DAG[names.SchemaIdentifier]
}

func (w *walk) visit(requester *names.SchemaIdentifier, target names.SchemaIdentifier) {
	if existing, ok := w.resolved[target.Name()]; ok && existing.Identifier() == target {
		w.addEdge(requester, target)
		return
	}

	found := w.find(target)
	if found == nil {
		d := diag.Errorf(diag.SchemaNotFound, "Schema %s could not be found in any directory", target).
			With("target", target.String())
		if requester != nil {
			d = d.With("requester", requester.String())
		}
		w.sink.Receive(d)
		return
	}

	if existing, ok := w.resolved[target.Name()]; ok {
		w.versionConflict(requester, existing.Identifier(), target)
		return
	}

	w.resolved[target.Name()] = found
	w.graph.AddVertex(target)
	if !w.addEdge(requester, target) {
		return
	}

	imports := found.ImportsByName()
	for _, name := range found.ImportNames() {
		next := imports[name]
		w.visit(&target, next)
	}
}

// addEdge records requester imports target, reporting a cycle if the edge
// would close one. It returns false if the edge was rejected.
func (w *walk) addEdge(requester *names.SchemaIdentifier, target names.SchemaIdentifier) bool {
	if requester == nil {
		return true
	}
	err := w.graph.AddEdge(*requester, target)
	if err == nil {
		return true
	}

	var cycle graph.CycleError[names.SchemaIdentifier]
	if !errors.As(err, &cycle) {
		panic(fmt.Sprintf("unexpected graph error: %v", err))
	}
	w.sink.Receive(diag.Errorf(diag.CircularImport,
		"Schema %s imports %s, which leads back to it: %s",
		requester, target, formatChain(cycle.Path)).
		With("requester", requester.String()).
		With("target", target.String()).
		With("path", formatChain(cycle.Path)))
	return false
}

func (w *walk) versionConflict(requester *names.SchemaIdentifier, existing, incoming names.SchemaIdentifier) {
	importers := w.graph.Incoming(existing)
	importerText := make([]string, len(importers))
	for i, imp := range importers {
		importerText[i] = imp.String() + " -> " + existing.String()
	}

	d := diag.Errorf(diag.VersionConflict,
		"Schema %s is required but %s has already been resolved", incoming, existing).
		With("existing", existing.String()).
		With("incoming", incoming.String()).
		With("existing_chain", formatChain(w.chainTo(existing)))
	if requester != nil {
		d = d.With("requester", requester.String())
	}
	if len(importerText) > 0 {
		d = d.With("existing_imported_by", strings.Join(importerText, ", "))
	}
	w.sink.Receive(d)
}

// chainTo follows first incoming edges from id back to a root.
func (w *walk) chainTo(id names.SchemaIdentifier) []names.SchemaIdentifier {
	chain := []names.SchemaIdentifier{id}
	seen := map[names.SchemaIdentifier]struct{}{id: {}}
	for current := id; ; {
		incoming := w.graph.Incoming(current)
		if len(incoming) == 0 {
			break
		}
		current = incoming[0]
		if _, loop := seen[current]; loop {
			break
		}
		seen[current] = struct{}{}
		chain = append(chain, current)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

type lookup struct {
	schema *schema.Schema
	err    error
}

func (w *walk) find(id names.SchemaIdentifier) *schema.Schema {
	if w.resolver.concurrent && len(w.directories) > 1 {
		return w.findConcurrent(id)
	}
	for i, d := range w.directories {
		result := w.query(d, id)
		if s := w.accept(i, id, result); s != nil {
			return s
		}
	}
	return nil
}

func (w *walk) findConcurrent(id names.SchemaIdentifier) *schema.Schema {
	results := make([]lookup, len(w.directories))
	var g errgroup.Group
	for i, d := range w.directories {
		i, d := i, d
		g.Go(func() error {
			results[i] = w.query(d, id)
			return nil
		})
	}
	_ = g.Wait()

	for i, result := range results {
		if s := w.accept(i, id, result); s != nil {
			return s
		}
	}
	return nil
}

// query calls one directory, converting a panic into an error.
func (w *walk) query(d Directory, id names.SchemaIdentifier) (result lookup) {
	defer func() {
		if r := recover(); r != nil {
			result = lookup{err: fmt.Errorf("directory panicked: %v", r)}
		}
	}()
	s, err := d.Find(w.ctx, id)
	return lookup{schema: s, err: err}
}

// accept publishes what went wrong with one lookup and returns the schema
// if it is usable.
func (w *walk) accept(index int, id names.SchemaIdentifier, result lookup) *schema.Schema {
	if result.err != nil {
		w.sink.Receive(diag.Warnf(diag.SchemaDirectoryFailed,
			"Directory %d failed while looking up %s: %v", index, id, result.err).
			With("directory", fmt.Sprint(index)).
			With("target", id.String()))
		return nil
	}
	if result.schema == nil {
		return nil
	}
	if result.schema.Identifier() != id {
		w.resolver.logger.Verbose("Directory %d returned %s for %s; ignoring", index, result.schema.Identifier(), id)
		return nil
	}
	return result.schema
}

func formatChain(ids []names.SchemaIdentifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, " -> ")
}
