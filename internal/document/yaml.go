package document

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/io7m/ironpage-sub000/internal/names"
)

// yamlDocument is the on-disk form shared by untyped and typed documents.
type yamlDocument struct {
	URI     string      `yaml:"uri,omitempty" json:"uri,omitempty"`
	Imports []string    `yaml:"imports" json:"imports"`
	Values  []yamlValue `yaml:"values" json:"values"`
}

type yamlValue struct {
	Name  string `yaml:"name" json:"name"`
	Type  string `yaml:"type,omitempty" json:"type,omitempty"`
	Value string `yaml:"value" json:"value"`
}

// DecodeYAML reads an untyped document. uri is used when the document does
// not name itself.
func DecodeYAML(r io.Reader, uri string) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("document %s is empty", uri)
		}
		return nil, fmt.Errorf("failed to parse document %s: %w", uri, err)
	}

	var raw yamlDocument
	if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid document %s: %w", uri, err)
	}

	doc := &Document{URI: raw.URI}
	if doc.URI == "" {
		doc.URI = uri
	}

	for i, text := range raw.Imports {
		id, err := names.ParseSchemaIdentifier(text)
		if err != nil {
			return nil, fmt.Errorf("document %s: import %d: %w", uri, i+1, err)
		}
		doc.Imports = append(doc.Imports, id)
	}
	if len(doc.Imports) > 1 {
		imports, err := uniqueImports(doc.Imports)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", uri, err)
		}
		doc.Imports = imports
	}

	lines := valueLines(&root)
	for i, v := range raw.Values {
		name, err := names.ParseQualifiedName(v.Name)
		if err != nil {
			return nil, fmt.Errorf("document %s: value %d: %w", uri, i+1, err)
		}
		value := Value{Name: name, Raw: v.Value}
		if i < len(lines) {
			value.Line = lines[i]
		}
		doc.Values = append(doc.Values, value)
	}
	return doc, nil
}

// valueLines returns the line of each entry of the "values" sequence.
func valueLines(root *yaml.Node) []int {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != "values" {
			continue
		}
		seq := mapping.Content[i+1]
		lines := make([]int, len(seq.Content))
		for j, item := range seq.Content {
			lines[j] = item.Line
		}
		return lines
	}
	return nil
}

// EncodeYAML writes an untyped document.
func EncodeYAML(w io.Writer, d *Document) error {
	out := yamlDocument{URI: d.URI, Imports: identifierStrings(d.Imports)}
	for _, v := range d.Values {
		out.Values = append(out.Values, yamlValue{Name: v.Name.String(), Value: v.Raw})
	}
	return encode(w, out)
}

// EncodeTypedYAML writes a typed document, tagging each value with its type.
func EncodeTypedYAML(w io.Writer, d *TypedDocument) error {
	return encode(w, typedView(d))
}

// TypedView returns the serializable form of a typed document, suitable
// for encoding/json.
func TypedView(d *TypedDocument) interface{} {
	return typedView(d)
}

func typedView(d *TypedDocument) yamlDocument {
	out := yamlDocument{URI: d.URI, Imports: identifierStrings(d.Imports)}
	for _, v := range d.Values {
		out.Values = append(out.Values, yamlValue{
			Name:  v.Name.String(),
			Type:  v.Value.Type().String(),
			Value: v.Value.String(),
		})
	}
	return out
}

func encode(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Close()
}

func identifierStrings(ids []names.SchemaIdentifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
