package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/io7m/ironpage-sub000/internal/ast"
	"github.com/io7m/ironpage-sub000/internal/binder"
	"github.com/io7m/ironpage-sub000/internal/checksum"
	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/logging"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/parser"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// Compiled is a schema together with what the loader knows about its origin.
type Compiled struct {
	Schema             *schema.Schema
	Bound              *ast.BoundSchema
	URI                string
	Checksum           string
	NormalizedChecksum string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger for compile progress and panicking receivers.
func WithLogger(logger ironpage.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithContext sets the context passed to the source on every fetch.
func WithContext(ctx context.Context) Option {
	return func(l *Loader) { l.ctx = ctx }
}

// WithChecksumCalculator overrides the SHA-256 calculator.
func WithChecksumCalculator(c checksum.Calculator) Option {
	return func(l *Loader) { l.checksums = c }
}

// WithMaxSourceSize bounds the size of every source read. Zero keeps
// parser.MaxSourceSize.
func WithMaxSourceSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxSize = n
		}
	}
}

// Loader compiles schemas from a Source, caching every result.
type Loader struct {
	source    Source
	sink      diag.Sink
	logger    ironpage.Logger
	ctx       context.Context
	checksums checksum.Calculator
	maxSize   int64

	cache      map[names.SchemaIdentifier]*Compiled
	failed     map[names.SchemaIdentifier]bool // true if the source was absent
	inProgress map[names.SchemaIdentifier]struct{}
	stack      []names.SchemaIdentifier
	lastAbsent bool

	// quietRoot leaves an absent root schema unreported; the directory
	// lets the resolver report it instead.
	quietRoot bool
}

// New creates a loader reading from source and publishing to sink.
func New(source Source, sink diag.Sink, opts ...Option) *Loader {
	l := &Loader{
		source:     source,
		logger:     logging.NewNullLogger(),
		ctx:        context.Background(),
		checksums:  checksum.New(),
		maxSize:    parser.MaxSourceSize,
		cache:      make(map[names.SchemaIdentifier]*Compiled),
		failed:     make(map[names.SchemaIdentifier]bool),
		inProgress: make(map[names.SchemaIdentifier]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.sink = diag.Safe(sink, l.logger)
	return l
}

// Load compiles target on behalf of requester. The zero requester means
// the load was not triggered by an import. A target that failed once fails
// again without publishing anything.
func (l *Loader) Load(requester, target names.SchemaIdentifier) (*schema.Schema, bool) {
	l.lastAbsent = false

	if c, ok := l.cache[target]; ok {
		if c.Schema.Identifier() != target {
			panic(fmt.Sprintf("loader cache corrupted: key %s holds schema %s", target, c.Schema.Identifier()))
		}
		return c.Schema, true
	}
	if absent, ok := l.failed[target]; ok {
		l.lastAbsent = absent
		return nil, false
	}

	if _, busy := l.inProgress[target]; busy {
		l.fail(diag.Errorf(diag.CyclicImport,
			"Schema %s imports %s, which is already being compiled", describe(requester), target).
			With("requester", describe(requester)).
			With("target", target.String()).
			With("path", l.cyclePath(target)))
		return nil, false
	}

	uri, reader, err := l.source.Open(l.ctx, target)
	if err != nil {
		if IsNotFound(err) {
			// Nothing was published, so a later import must still
			// report the absence.
			if requester.IsZero() && l.quietRoot {
				l.lastAbsent = true
				return nil, false
			}
			l.fail(diag.Errorf(diag.SchemaNonexistent,
				"Schema %s imported by %s does not exist", target, describe(requester)).
				With("requester", describe(requester)).
				With("target", target.String()))
			return l.markFailed(target)
		}
		l.fail(diag.Errorf(diag.SourceError, "Failed to open source of schema %s: %v", target, err).
			At(uri, 0, 0).
			With("target", target.String()))
		return l.markFailed(target)
	}
	defer reader.Close()

	c, ok := l.compile(uri, reader, &target)
	if !ok {
		return l.markFailed(target)
	}
	return c.Schema, true
}

// markFailed records that target cannot be compiled in this session.
func (l *Loader) markFailed(target names.SchemaIdentifier) (*schema.Schema, bool) {
	l.failed[target] = l.lastAbsent
	return nil, false
}

// Compile compiles a document that is not addressed by identifier, such as
// a file named on the command line. Its imports are loaded from the source.
func (l *Loader) Compile(uri string, reader io.Reader) (*Compiled, bool) {
	l.lastAbsent = false
	return l.compile(uri, reader, nil)
}

// Compiled returns what the loader recorded for id.
func (l *Loader) Compiled(id names.SchemaIdentifier) (*Compiled, bool) {
	c, ok := l.cache[id]
	return c, ok
}

// Checksum returns the raw source checksum recorded for id.
func (l *Loader) Checksum(id names.SchemaIdentifier) (string, bool) {
	c, ok := l.cache[id]
	if !ok {
		return "", false
	}
	return c.Checksum, true
}

// Loaded returns every compiled identifier in order.
func (l *Loader) Loaded() []names.SchemaIdentifier {
	set := make(map[names.SchemaIdentifier]struct{}, len(l.cache))
	for id := range l.cache {
		set[id] = struct{}{}
	}
	return sortedIdentifiers(set)
}

func (l *Loader) fail(d diag.Diagnostic) {
	l.lastAbsent = d.Code == diag.SchemaNonexistent
	l.sink.Receive(d)
}

func (l *Loader) compile(uri string, reader io.Reader, expected *names.SchemaIdentifier) (*Compiled, bool) {
	data, err := io.ReadAll(io.LimitReader(reader, l.maxSize+1))
	if err != nil {
		l.fail(diag.Errorf(diag.SourceError, "Failed to read schema source: %v", err).At(uri, 0, 0))
		return nil, false
	}

	l.logger.Verbose("Compiling schema source %s", uri)
	parsed, ok := parser.New(l.sink, uri, bytes.NewReader(data),
		parser.WithLogger(l.logger), parser.WithMaxSourceSize(l.maxSize)).Execute()
	if !ok {
		l.lastAbsent = false
		return nil, false
	}

	declared, declaredOK := declaredIdentifier(parsed)
	if expected != nil && declaredOK && declared != *expected {
		l.fail(diag.Errorf(diag.SchemaIdentifierMismatch,
			"Source for schema %s declares schema %s", *expected, declared).
			At(uri, parsed.Line, parsed.Column).
			With("expected", expected.String()).
			With("declared", declared.String()))
		return nil, false
	}

	// Mark both the requested and the declared identifier so that a cycle
	// back to either is caught.
	var marked []names.SchemaIdentifier
	for _, id := range []*names.SchemaIdentifier{expected, &declared} {
		if id == nil || id.IsZero() {
			continue
		}
		if _, already := l.inProgress[*id]; already {
			continue
		}
		l.inProgress[*id] = struct{}{}
		marked = append(marked, *id)
	}
	if declaredOK {
		l.stack = append(l.stack, declared)
	}
	defer func() {
		for _, id := range marked {
			delete(l.inProgress, id)
		}
		if declaredOK {
			l.stack = l.stack[:len(l.stack)-1]
		}
	}()

	bound, ok := binder.New(l.sink, l, uri, parsed, binder.WithLogger(l.logger)).Execute()
	if !ok {
		l.lastAbsent = false
		return nil, false
	}

	compiled, err := bound.Compile()
	if err != nil {
		panic(fmt.Sprintf("binder accepted schema %s with duplicate names: %v", bound.Identifier, err))
	}

	c := &Compiled{
		Schema:             compiled,
		Bound:              bound,
		URI:                uri,
		Checksum:           l.checksums.CalculateRaw(data),
		NormalizedChecksum: l.checksums.CalculateNormalized(data),
	}
	if _, exists := l.cache[compiled.Identifier()]; !exists {
		l.cache[compiled.Identifier()] = c
	}
	l.logger.Verbose("Compiled schema %s (%s)", compiled.Identifier(), shortChecksum(c.Checksum))
	return c, true
}

// declaredIdentifier reads the identifier a parsed document claims
// without publishing anything; the binder reports invalid names.
func declaredIdentifier(parsed *ast.ParsedSchema) (names.SchemaIdentifier, bool) {
	id, err := names.ParseSchemaIdentifier(parsed.ID + ":" + parsed.VersionMajor + ":" + parsed.VersionMinor)
	if err != nil {
		return names.SchemaIdentifier{}, false
	}
	return id, true
}

func (l *Loader) cyclePath(target names.SchemaIdentifier) string {
	start := 0
	for i, id := range l.stack {
		if id == target {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(l.stack)-start+1)
	for _, id := range l.stack[start:] {
		parts = append(parts, id.String())
	}
	parts = append(parts, target.String())
	return strings.Join(parts, " -> ")
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

func describe(id names.SchemaIdentifier) string {
	if id.IsZero() {
		return "(root)"
	}
	return id.String()
}

var _ binder.Loader = (*Loader)(nil)
