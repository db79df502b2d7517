package parser

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/io7m/ironpage-sub000/internal/ast"
	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleSchema = `<?xml version="1.0" encoding="UTF-8"?>
<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0"
        id="com.io7m.example" versionMajor="1" versionMinor="0">
  <Comment>An example.</Comment>
  <Import id="com.io7m.basic" versionMajor="1" versionMinor="2"/>
  <DeclareType name="t">
    <TypePrimitive type="INTEGER"/>
    <Comment>A t.</Comment>
  </DeclareType>
  <DeclareAttribute name="a" cardinality="CARDINALITY_1">
    <TypeNamed schema="com.io7m.example" type="t"/>
  </DeclareAttribute>
</Schema>
`

func parse(t *testing.T, text string) (*ast.ParsedSchema, bool, *diag.Collector) {
	t.Helper()
	c := &diag.Collector{}
	result, ok := New(c, "urn:test", strings.NewReader(text)).Execute()
	return result, ok, c
}

func TestExecute_Example(t *testing.T) {
	result, ok, c := parse(t, exampleSchema)
	require.True(t, ok, c.String())
	assert.Empty(t, c.Diagnostics())

	assert.Equal(t, "com.io7m.example", result.ID)
	assert.Equal(t, "1", result.VersionMajor)
	assert.Equal(t, "0", result.VersionMinor)
	assert.Equal(t, "urn:test", result.URI)
	require.Len(t, result.Declarations, 4)

	comment, ok := result.Declarations[0].(ast.ParsedComment)
	require.True(t, ok)
	assert.Equal(t, "An example.", comment.Text)

	imp, ok := result.Declarations[1].(ast.ParsedImport)
	require.True(t, ok)
	assert.Equal(t, "com.io7m.basic", imp.ID)
	assert.Equal(t, "2", imp.VersionMinor)
	assert.Equal(t, 5, imp.Line)

	typ, ok := result.Declarations[2].(ast.ParsedType)
	require.True(t, ok)
	assert.Equal(t, "t", typ.Name)
	assert.Equal(t, "A t.", typ.Comment)
	assert.Equal(t, ast.ParsedTypePrimitive{Position: typ.Base.Pos(), Type: schema.Integer}, typ.Base)

	attr, ok := result.Declarations[3].(ast.ParsedAttribute)
	require.True(t, ok)
	assert.Equal(t, schema.Exactly1, attr.Cardinality)
	named, ok := attr.Type.(ast.ParsedTypeNamed)
	require.True(t, ok)
	assert.Equal(t, "com.io7m.example", named.Schema)
	assert.Equal(t, "t", named.Type)
}

func TestExecute_SourceOrderKept(t *testing.T) {
	result, ok, c := parse(t, `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="1" versionMinor="0">
  <DeclareAttribute name="a" cardinality="CARDINALITY_0_TO_N"><TypePrimitive type="STRING"/></DeclareAttribute>
  <Import id="y" versionMajor="1" versionMinor="0"/>
  <Comment>late</Comment>
</Schema>`)
	require.True(t, ok, c.String())
	require.Len(t, result.Declarations, 3)
	assert.Equal(t, "attribute", ast.Kind(result.Declarations[0]))
	assert.Equal(t, "import", ast.Kind(result.Declarations[1]))
	assert.Equal(t, "comment", ast.Kind(result.Declarations[2]))
}

func TestExecute_EmptyBody(t *testing.T) {
	result, ok, c := parse(t, `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="0" versionMinor="0"/>`)
	require.True(t, ok, c.String())
	assert.Empty(t, result.Declarations)
}

func TestExecute_NamesAreNotValidated(t *testing.T) {
	result, ok, c := parse(t, `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="NOT VALID" versionMajor="1" versionMinor="0">
  <DeclareType name="Bad-Name"><TypePrimitive type="STRING"/></DeclareType>
</Schema>`)
	require.True(t, ok, c.String())
	assert.Equal(t, "NOT VALID", result.ID)
}

func TestExecute_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"malformed", `<Schema`, 1},
		{"empty", ``, 1},
		{"wrong root", `<Other xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0"/>`, 1},
		{"wrong namespace", `<Schema xmlns="urn:other" id="x" versionMajor="1" versionMinor="0"/>`, 1},
		{"missing id", `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" versionMajor="1" versionMinor="0"/>`, 1},
		{"negative version", `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="-1" versionMinor="0"/>`, 1},
		{"unknown primitive", `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="1" versionMinor="0">
  <DeclareType name="t"><TypePrimitive type="DECIMAL"/></DeclareType>
</Schema>`, 1},
		{"unknown cardinality", `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="1" versionMinor="0">
  <DeclareAttribute name="a" cardinality="MANY"><TypePrimitive type="STRING"/></DeclareAttribute>
</Schema>`, 1},
		{"missing type reference", `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="1" versionMinor="0">
  <DeclareType name="t"/>
</Schema>`, 1},
		{"two type references", `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="1" versionMinor="0">
  <DeclareType name="t"><TypePrimitive type="STRING"/><TypePrimitive type="REAL"/></DeclareType>
</Schema>`, 1},
		{"unknown attribute", `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="1" versionMinor="0">
  <Import id="y" versionMajor="1" versionMinor="0" extra="no"/>
</Schema>`, 1},
		{"stray text", `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="1" versionMinor="0">hello</Schema>`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok, c := parse(t, tt.input)
			assert.False(t, ok)
			assert.Nil(t, result)
			assert.Equal(t, tt.count, c.Count(diag.SyntaxError), c.String())
		})
	}
}

func TestExecute_ContinuesAfterBadDeclaration(t *testing.T) {
	_, ok, c := parse(t, `<Schema xmlns="urn:com.io7m.ironpage.metadata.schema.xml:1:0" id="x" versionMajor="1" versionMinor="0">
  <DeclareType name="t"><TypePrimitive type="DECIMAL"/></DeclareType>
  <Bogus/>
  <DeclareAttribute name="a" cardinality="NEVER"><TypePrimitive type="STRING"/></DeclareAttribute>
</Schema>`)
	assert.False(t, ok)
	assert.Equal(t, 3, c.Count(diag.SyntaxError), c.String())
}

func TestExecute_SyntaxErrorHasLine(t *testing.T) {
	_, ok, c := parse(t, "<Schema xmlns=\"urn:com.io7m.ironpage.metadata.schema.xml:1:0\" id=\"x\" versionMajor=\"1\" versionMinor=\"0\">\n\n  <Bogus/>\n</Schema>")
	assert.False(t, ok)
	require.Len(t, c.Diagnostics(), 1)
	d := c.Diagnostics()[0]
	assert.Equal(t, 3, d.Line)
	assert.Equal(t, "urn:test", d.URI)
}

func TestExecute_PositionIsStartOfElement(t *testing.T) {
	result, ok, c := parse(t, exampleSchema)
	require.True(t, ok, c.String())
	assert.Equal(t, 2, result.Line)
	assert.Equal(t, 1, result.Column)

	imp := result.Declarations[1].(ast.ParsedImport)
	assert.Equal(t, 3, imp.Column)

	_, ok, c = parse(t, "<Schema xmlns=\"urn:com.io7m.ironpage.metadata.schema.xml:1:0\" id=\"x\" versionMajor=\"1\" versionMinor=\"0\">\n  <Bogus\n     a=\"1\"\n     b=\"2\"/>\n</Schema>")
	assert.False(t, ok)
	require.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, 2, c.Diagnostics()[0].Line)
	assert.Equal(t, 3, c.Diagnostics()[0].Column)
}

func TestExecute_TooLarge(t *testing.T) {
	c := &diag.Collector{}
	_, ok := New(c, "urn:test", strings.NewReader(exampleSchema), WithMaxSourceSize(64)).Execute()
	assert.False(t, ok)
	assert.Equal(t, 1, c.Count(diag.SyntaxError))
	assert.Contains(t, c.String(), "maximum size")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestExecute_SourceError(t *testing.T) {
	c := &diag.Collector{}
	_, ok := New(c, "urn:test", io.MultiReader(strings.NewReader("<Schema "), failingReader{})).Execute()
	assert.False(t, ok)
	assert.Equal(t, 1, c.Count(diag.SourceError), c.String())
}

func TestExecute_PanickingSink(t *testing.T) {
	sink := diag.SinkFunc(func(diag.Diagnostic) { panic("boom") })
	assert.NotPanics(t, func() {
		_, ok := New(sink, "urn:test", strings.NewReader("<Schema")).Execute()
		assert.False(t, ok)
	})
}
