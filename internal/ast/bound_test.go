package ast

import (
	"testing"

	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundSchema_Compile(t *testing.T) {
	id := names.MustSchemaIdentifier("com.io7m.example", 1, 0)
	basic := names.MustSchemaIdentifier("com.io7m.basic", 1, 2)

	b := &BoundSchema{
		Identifier: id,
		Declarations: []BoundDeclaration{
			BoundComment{Text: "An example."},
			BoundImport{Identifier: basic},
			BoundType{Name: "t", Base: schema.TypePrimitive{Type: schema.Integer}, Comment: "A t."},
			BoundAttribute{
				Name:        "a",
				Type:        schema.TypeNamedRef{Schema: id, Name: "t", Base: schema.Integer},
				Cardinality: schema.Exactly1,
			},
		},
	}

	s, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, id, s.Identifier())
	assert.Equal(t, []names.SchemaIdentifier{basic}, s.Imports())

	typ, ok := s.Type("t")
	require.True(t, ok)
	assert.Equal(t, id, typ.Schema)
	assert.Equal(t, "A t.", typ.Comment)

	attr, ok := s.Attribute("a")
	require.True(t, ok)
	assert.Equal(t, schema.Integer, attr.Type.BasePrimitiveType())
}

func TestBoundSchema_CompileEmpty(t *testing.T) {
	b := &BoundSchema{Identifier: names.MustSchemaIdentifier("com.io7m.empty", 0, 0)}
	s, err := b.Compile()
	require.NoError(t, err)
	assert.Empty(t, s.Types())
	assert.Empty(t, s.Attributes())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "comment", Kind(ParsedComment{}))
	assert.Equal(t, "import", Kind(BoundImport{}))
	assert.Equal(t, "type", Kind(ParsedType{}))
	assert.Equal(t, "attribute", Kind(BoundAttribute{}))
	assert.Equal(t, "unknown", Kind(42))
}
