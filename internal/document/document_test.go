package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `uri: urn:example:page:1
imports:
  - com.io7m.ironpage.dublin_core:1:0
values:
  - name: com.io7m.ironpage.dublin_core:title
    value: An example page
  - name: com.io7m.ironpage.dublin_core:date
    value: "2024-01-01T00:00:00Z"
  - name: com.io7m.ironpage.dublin_core:flag
    value: true
`

func TestDecodeYAML(t *testing.T) {
	doc, err := DecodeYAML(strings.NewReader(sampleYAML), "file:page.yaml")
	require.NoError(t, err)

	assert.Equal(t, "urn:example:page:1", doc.URI)
	assert.Equal(t, []names.SchemaIdentifier{names.MustParseSchemaIdentifier("com.io7m.ironpage.dublin_core:1:0")}, doc.Imports)
	require.Len(t, doc.Values, 3)
	assert.Equal(t, "com.io7m.ironpage.dublin_core:title", doc.Values[0].Name.String())
	assert.Equal(t, "An example page", doc.Values[0].Raw)
	assert.Equal(t, 5, doc.Values[0].Line)
	assert.Equal(t, 7, doc.Values[1].Line)
	assert.Equal(t, "true", doc.Values[2].Raw)
}

func TestDecodeYAML_DefaultURI(t *testing.T) {
	doc, err := DecodeYAML(strings.NewReader("imports: []\nvalues: []\n"), "file:page.yaml")
	require.NoError(t, err)
	assert.Equal(t, "file:page.yaml", doc.URI)
	assert.Empty(t, doc.Values)
}

func TestDecodeYAML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "is empty"},
		{"malformed", "values: [", "failed to parse"},
		{"bad import", "imports: [nope]\n", "import 1"},
		{"bad value name", "values:\n  - name: title\n    value: x\n", "value 1"},
		{"wrong shape", "values: 3\n", "invalid document"},
		{"conflicting imports", "imports: [com.io7m.x:1:0, com.io7m.x:2:0]\n", "imported as both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeYAML(strings.NewReader(tt.input), "file:bad.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeYAML_RepeatedImport(t *testing.T) {
	doc, err := DecodeYAML(strings.NewReader("imports: [com.io7m.x:1:0, com.io7m.y:1:0, com.io7m.x:1:0]\n"), "file:page.yaml")
	require.NoError(t, err)
	assert.Equal(t, []names.SchemaIdentifier{
		names.MustSchemaIdentifier("com.io7m.x", 1, 0),
		names.MustSchemaIdentifier("com.io7m.y", 1, 0),
	}, doc.Imports)
}

func TestEncodeYAML_Decodes(t *testing.T) {
	doc, err := DecodeYAML(strings.NewReader(sampleYAML), "file:page.yaml")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeYAML(&buf, doc))

	again, err := DecodeYAML(&buf, "file:other.yaml")
	require.NoError(t, err)
	assert.Equal(t, doc.URI, again.URI)
	assert.Equal(t, doc.Imports, again.Imports)
	require.Len(t, again.Values, len(doc.Values))
	for i := range doc.Values {
		assert.Equal(t, doc.Values[i].Name, again.Values[i].Name)
		assert.Equal(t, doc.Values[i].Raw, again.Values[i].Raw)
	}
}

func TestEncodeTypedYAML(t *testing.T) {
	title := names.QualifiedName{Schema: "com.io7m.test", Attribute: "title"}
	flag := names.QualifiedName{Schema: "com.io7m.test", Attribute: "flag"}
	doc := &TypedDocument{
		URI:     "urn:x",
		Imports: []names.SchemaIdentifier{names.MustSchemaIdentifier("com.io7m.test", 1, 0)},
		Values: []TypedValue{
			{Name: title, Value: String("Hello")},
			{Name: flag, Value: Boolean(false)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeTypedYAML(&buf, doc))

	out := buf.String()
	assert.Contains(t, out, "- com.io7m.test:1:0")
	assert.Contains(t, out, "type: STRING")
	assert.Contains(t, out, "type: BOOLEAN")
	assert.Contains(t, out, `value: "false"`)

	assert.Equal(t, []Typed{Boolean(false)}, doc.Lookup(flag))
}

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []Value
		wantErr string
	}{
		{
			name:  "simple",
			input: []string{"com.io7m.test:title=Hello"},
			want:  []Value{{Name: names.QualifiedName{Schema: "com.io7m.test", Attribute: "title"}, Raw: "Hello"}},
		},
		{
			name:  "value with equals",
			input: []string{"com.io7m.test:expr=a=b"},
			want:  []Value{{Name: names.QualifiedName{Schema: "com.io7m.test", Attribute: "expr"}, Raw: "a=b"}},
		},
		{
			name:  "empty value",
			input: []string{"com.io7m.test:title="},
			want:  []Value{{Name: names.QualifiedName{Schema: "com.io7m.test", Attribute: "title"}, Raw: ""}},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []Value{},
		},
		{name: "no equals", input: []string{"com.io7m.test:title"}, wantErr: "is not in schema:attribute=value format"},
		{name: "empty name", input: []string{"=x"}, wantErr: "empty name"},
		{name: "unqualified", input: []string{"title=x"}, wantErr: "schema:attribute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePairs(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseImports(t *testing.T) {
	ids, err := ParseImports([]string{"com.io7m.a:1:0", "com.io7m.b:2:1", "com.io7m.a:1:0"})
	require.NoError(t, err)
	assert.Equal(t, []names.SchemaIdentifier{
		names.MustSchemaIdentifier("com.io7m.a", 1, 0),
		names.MustSchemaIdentifier("com.io7m.b", 2, 1),
	}, ids)

	_, err = ParseImports([]string{"com.io7m.a:1:0", "com.io7m.a:2:0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")

	_, err = ParseImports([]string{"bad"})
	require.Error(t, err)
}
