package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(text string) names.SchemaIdentifier {
	return names.MustParseSchemaIdentifier(text)
}

func sch(self string, imports ...string) *schema.Schema {
	ids := make([]names.SchemaIdentifier, len(imports))
	for i, imp := range imports {
		ids[i] = id(imp)
	}
	return schema.MustNew(id(self), ids, nil, nil)
}

func roots(ids ...string) map[names.SchemaName]names.SchemaIdentifier {
	out := make(map[names.SchemaName]names.SchemaIdentifier, len(ids))
	for _, text := range ids {
		parsed := id(text)
		out[parsed.Name()] = parsed
	}
	return out
}

func resolve(t *testing.T, r *Resolver, rootIDs ...string) (*ResolvedSchemaSet, bool, *diag.Collector) {
	t.Helper()
	c := &diag.Collector{}
	set, ok := r.Resolve(context.Background(), roots(rootIDs...), c)
	return set, ok, c
}

func TestResolve_Closure(t *testing.T) {
	dir := NewMapDirectory(
		sch("app:1:0", "lib.a:1:0", "lib.b:1:0"),
		sch("lib.a:1:0", "lib.core:1:0"),
		sch("lib.b:1:0", "lib.core:1:0"),
		sch("lib.core:1:0"),
	)
	set, ok, c := resolve(t, New(NewRegistry(dir)), "app:1:0")
	require.True(t, ok, c.String())
	assert.Empty(t, c.Diagnostics())

	assert.Len(t, set.Schemas, 4)
	assert.Equal(t, id("lib.core:1:0"), set.Schemas["lib.core"].Identifier())
	assert.ElementsMatch(t,
		[]names.SchemaIdentifier{id("lib.a:1:0"), id("lib.b:1:0")},
		set.Graph.Incoming(id("lib.core:1:0")))
	assert.Equal(t, "app:1:0", set.Sorted()[0].Identifier().String())
}

func TestResolve_CircularImport(t *testing.T) {
	dir := NewMapDirectory(
		sch("a:1:0", "b:1:0"),
		sch("b:1:0", "a:1:0"),
	)
	set, ok, c := resolve(t, New(NewRegistry(dir)), "a:1:0")
	assert.False(t, ok)
	assert.Nil(t, set)
	require.Equal(t, 1, c.Count(diag.CircularImport), c.String())
	assert.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, "a:1:0 -> b:1:0 -> a:1:0", c.Diagnostics()[0].Attributes["path"])
}

func TestResolve_CircularImportBothRoots(t *testing.T) {
	dir := NewMapDirectory(
		sch("a:1:0", "b:1:0"),
		sch("b:1:0", "a:1:0"),
	)
	_, ok, c := resolve(t, New(NewRegistry(dir)), "a:1:0", "b:1:0")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Count(diag.CircularImport), c.String())
}

func TestResolve_LongerCycleReportsShortestPath(t *testing.T) {
	dir := NewMapDirectory(
		sch("a:1:0", "b:1:0"),
		sch("b:1:0", "c:1:0"),
		sch("c:1:0", "a:1:0"),
	)
	_, ok, c := resolve(t, New(NewRegistry(dir)), "a:1:0")
	assert.False(t, ok)
	require.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, "a:1:0 -> b:1:0 -> c:1:0 -> a:1:0", c.Diagnostics()[0].Attributes["path"])
}

func TestResolve_SelfImport(t *testing.T) {
	dir := NewMapDirectory(sch("a:1:0", "a:1:0"))
	_, ok, c := resolve(t, New(NewRegistry(dir)), "a:1:0")
	assert.False(t, ok)
	assert.Equal(t, []diag.Code{diag.CircularImport}, c.Codes())
}

func TestResolve_VersionConflict(t *testing.T) {
	dir := NewMapDirectory(
		sch("root:1:0", "a:1:0", "b:1:0"),
		sch("a:1:0", "x:1:0"),
		sch("b:1:0", "x:2:0"),
		sch("x:1:0"),
		sch("x:2:0"),
	)
	_, ok, c := resolve(t, New(NewRegistry(dir)), "root:1:0")
	assert.False(t, ok)
	require.Equal(t, []diag.Code{diag.VersionConflict}, c.Codes())

	d := c.Diagnostics()[0]
	assert.Equal(t, "x:1:0", d.Attributes["existing"])
	assert.Equal(t, "x:2:0", d.Attributes["incoming"])
	assert.Equal(t, "b:1:0", d.Attributes["requester"])
	assert.Equal(t, "root:1:0 -> a:1:0 -> x:1:0", d.Attributes["existing_chain"])
	assert.Equal(t, "a:1:0 -> x:1:0", d.Attributes["existing_imported_by"])
}

func TestResolve_VersionConflictBetweenRootAndImport(t *testing.T) {
	dir := NewMapDirectory(
		sch("a:1:0", "x:2:0"),
		sch("x:1:0"),
		sch("x:2:0"),
	)
	_, ok, c := resolve(t, New(NewRegistry(dir)), "a:1:0", "x:1:0")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Count(diag.VersionConflict), c.String())
}

func TestResolve_NotFoundContinues(t *testing.T) {
	dir := NewMapDirectory(
		sch("a:1:0", "missing.one:1:0", "b:1:0"),
		sch("b:1:0", "missing.two:1:0"),
	)
	set, ok, c := resolve(t, New(NewRegistry(dir)), "a:1:0")
	assert.False(t, ok)
	assert.Nil(t, set)
	assert.Equal(t, 2, c.Count(diag.SchemaNotFound), c.String())
}

func TestResolve_MismatchedResultIsAbsent(t *testing.T) {
	liar := DirectoryFunc(func(context.Context, names.SchemaIdentifier) (*schema.Schema, error) {
		return sch("other:9:9"), nil
	})
	honest := NewMapDirectory(sch("a:1:0"))

	set, ok, c := resolve(t, New(NewRegistry(liar, honest)), "a:1:0")
	require.True(t, ok, c.String())
	assert.Equal(t, id("a:1:0"), set.Schemas["a"].Identifier())

	_, ok, c = resolve(t, New(NewRegistry(liar)), "a:1:0")
	assert.False(t, ok)
	assert.Equal(t, []diag.Code{diag.SchemaNotFound}, c.Codes())
}

func TestResolve_FailingDirectoryWarns(t *testing.T) {
	failing := DirectoryFunc(func(context.Context, names.SchemaIdentifier) (*schema.Schema, error) {
		return nil, errors.New("connection refused")
	})
	panicking := DirectoryFunc(func(context.Context, names.SchemaIdentifier) (*schema.Schema, error) {
		panic("directory exploded")
	})
	good := NewMapDirectory(sch("a:1:0"))

	for _, concurrent := range []bool{false, true} {
		var opts []Option
		if concurrent {
			opts = append(opts, WithConcurrentLookup())
		}
		set, ok, c := resolve(t, New(NewRegistry(failing, panicking, good), opts...), "a:1:0")
		require.True(t, ok, c.String())
		assert.NotNil(t, set.Schemas["a"])
		assert.Equal(t, []diag.Code{diag.SchemaDirectoryFailed, diag.SchemaDirectoryFailed}, c.Codes())
		for _, d := range c.Diagnostics() {
			assert.Equal(t, diag.SeverityWarning, d.Severity)
		}
	}
}

func TestResolve_FirstPriorityWins(t *testing.T) {
	first := schema.MustNew(id("a:1:0"), nil,
		[]schema.TypeNamed{{Schema: id("a:1:0"), Name: "first", Base: schema.TypePrimitive{Type: schema.String}}}, nil)
	second := schema.MustNew(id("a:1:0"), nil,
		[]schema.TypeNamed{{Schema: id("a:1:0"), Name: "second", Base: schema.TypePrimitive{Type: schema.String}}}, nil)

	// The first directory answers slowly so the concurrent lookup has to
	// reconcile rather than take the first reply.
	slow := DirectoryFunc(func(ctx context.Context, target names.SchemaIdentifier) (*schema.Schema, error) {
		time.Sleep(20 * time.Millisecond)
		return NewMapDirectory(first).Find(ctx, target)
	})

	for _, opts := range [][]Option{nil, {WithConcurrentLookup()}} {
		set, ok, c := resolve(t, New(NewRegistry(slow, NewMapDirectory(second)), opts...), "a:1:0")
		require.True(t, ok, c.String())
		assert.Same(t, first, set.Schemas["a"])
	}
}

func TestResolve_ConcurrentQueriesAllDirectories(t *testing.T) {
	var calls int32
	counting := func(s *schema.Schema) Directory {
		inner := NewMapDirectory(s)
		return DirectoryFunc(func(ctx context.Context, target names.SchemaIdentifier) (*schema.Schema, error) {
			atomic.AddInt32(&calls, 1)
			return inner.Find(ctx, target)
		})
	}
	r := New(NewRegistry(counting(sch("a:1:0")), counting(sch("a:1:0"))), WithConcurrentLookup())
	_, ok, _ := resolve(t, r, "a:1:0")
	require.True(t, ok)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResolve_PanickingSink(t *testing.T) {
	r := New(NewRegistry(NewMapDirectory()))
	sink := diag.SinkFunc(func(diag.Diagnostic) { panic("sink exploded") })
	assert.NotPanics(t, func() {
		_, ok := r.Resolve(context.Background(), roots("a:1:0"), sink)
		assert.False(t, ok)
	})
}

func TestResolve_EmptyRoots(t *testing.T) {
	set, ok, c := resolve(t, New(NewRegistry()))
	require.True(t, ok)
	assert.Empty(t, set.Schemas)
	assert.Empty(t, c.Diagnostics())
}

func TestRegistry_AddRemove(t *testing.T) {
	a := NewMapDirectory(sch("a:1:0"))
	b := NewMapDirectory(sch("b:1:0"))
	reg := NewRegistry(a)
	r := New(reg)

	_, ok, _ := resolve(t, r, "b:1:0")
	assert.False(t, ok)

	reg.Add(b)
	assert.Equal(t, 2, reg.Len())
	_, ok, _ = resolve(t, r, "b:1:0")
	assert.True(t, ok)

	assert.True(t, reg.Remove(b))
	assert.False(t, reg.Remove(b))
	_, ok, _ = resolve(t, r, "b:1:0")
	assert.False(t, ok)
}
