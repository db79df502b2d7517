package schema

import (
	"testing"

	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SortedIndices(t *testing.T) {
	id := names.MustSchemaIdentifier("com.io7m.example", 1, 0)
	s, err := New(
		id,
		[]names.SchemaIdentifier{
			names.MustSchemaIdentifier("com.io7m.z", 1, 0),
			names.MustSchemaIdentifier("com.io7m.a", 2, 3),
		},
		[]TypeNamed{
			{Schema: id, Name: "zeta", Base: TypePrimitive{Type: Integer}},
			{Schema: id, Name: "alpha", Base: TypePrimitive{Type: String}},
		},
		[]Attribute{
			{Name: "title", Type: TypePrimitive{Type: String}, Cardinality: Exactly1},
			{Name: "author", Type: TypePrimitive{Type: String}, Cardinality: ZeroOrMany},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, []names.SchemaName{"com.io7m.a", "com.io7m.z"}, s.ImportNames())
	assert.Equal(t, []names.TypeName{"alpha", "zeta"}, s.TypeNames())
	assert.Equal(t, []names.AttributeName{"author", "title"}, s.AttributeNames())

	// Declaration order is kept separately.
	assert.Equal(t, names.TypeName("zeta"), s.Types()[0].Name)

	imp, ok := s.Import("com.io7m.a")
	require.True(t, ok)
	assert.Equal(t, "com.io7m.a:2:3", imp.String())

	_, ok = s.Type("missing")
	assert.False(t, ok)

	attr, ok := s.Attribute("title")
	require.True(t, ok)
	assert.Equal(t, String, attr.Type.BasePrimitiveType())
	assert.Len(t, s.AttributesByName(), 2)
}

func TestNew_Duplicates(t *testing.T) {
	id := names.MustSchemaIdentifier("com.io7m.example", 1, 0)

	_, err := New(id,
		[]names.SchemaIdentifier{
			names.MustSchemaIdentifier("com.io7m.a", 1, 0),
			names.MustSchemaIdentifier("com.io7m.a", 2, 0),
		}, nil, nil)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = New(id, nil, []TypeNamed{
		{Schema: id, Name: "t", Base: TypePrimitive{Type: Integer}},
		{Schema: id, Name: "t", Base: TypePrimitive{Type: Real}},
	}, nil)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = New(id, nil, nil, []Attribute{
		{Name: "a", Type: TypePrimitive{Type: Integer}, Cardinality: Exactly1},
		{Name: "a", Type: TypePrimitive{Type: Integer}, Cardinality: Exactly1},
	})
	assert.ErrorIs(t, err, ErrDuplicateName)

	assert.Panics(t, func() {
		MustNew(id, nil, nil, []Attribute{
			{Name: "a", Type: TypePrimitive{Type: Integer}, Cardinality: Exactly1},
			{Name: "a", Type: TypePrimitive{Type: Integer}, Cardinality: Exactly1},
		})
	})
}

func TestNew_TypeAndAttributeMayShareName(t *testing.T) {
	id := names.MustSchemaIdentifier("com.io7m.example", 1, 0)
	_, err := New(id, nil,
		[]TypeNamed{{Schema: id, Name: "same", Base: TypePrimitive{Type: Integer}}},
		[]Attribute{{Name: "same", Type: TypePrimitive{Type: Integer}, Cardinality: Exactly1}},
	)
	assert.NoError(t, err)
}

func TestCardinality_Permits(t *testing.T) {
	tests := []struct {
		c     Cardinality
		count int
		want  bool
	}{
		{Exactly1, 0, false},
		{Exactly1, 1, true},
		{Exactly1, 2, false},
		{ZeroOrOne, 0, true},
		{ZeroOrOne, 1, true},
		{ZeroOrOne, 2, false},
		{ZeroOrMany, 0, true},
		{ZeroOrMany, 100, true},
		{OneOrMany, 0, false},
		{OneOrMany, 1, true},
		{OneOrMany, 7, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.Permits(tt.count), "%s with %d", tt.c, tt.count)
	}
}

func TestParsePrimitiveType(t *testing.T) {
	for _, p := range PrimitiveTypes() {
		parsed, err := ParsePrimitiveType(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	_, err := ParsePrimitiveType("integer")
	assert.Error(t, err)
}

func TestParseCardinality(t *testing.T) {
	c, err := ParseCardinality("CARDINALITY_1_TO_N")
	require.NoError(t, err)
	assert.Equal(t, OneOrMany, c)

	_, err = ParseCardinality("CARDINALITY_2")
	assert.Error(t, err)
}

func TestTypeNamedRef_Base(t *testing.T) {
	ref := TypeNamedRef{
		Schema: names.MustSchemaIdentifier("com.io7m.basic", 1, 2),
		Name:   "b",
		Base:   Boolean,
	}
	assert.Equal(t, Boolean, ref.BasePrimitiveType())
	assert.Equal(t, "com.io7m.basic:1:2:b", ref.String())
}
