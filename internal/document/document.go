package document

import (
	"github.com/io7m/ironpage-sub000/internal/names"
)

// Value is one untyped attribute value.
type Value struct {
	Name names.QualifiedName
	Raw  string
	Line int // source line, 0 if unknown
}

// Document is an untyped attribute-value document.
type Document struct {
	URI     string
	Imports []names.SchemaIdentifier
	Values  []Value
}

// ImportNames returns the import identifiers keyed by schema name.
func (d *Document) ImportNames() map[names.SchemaName]names.SchemaIdentifier {
	out := make(map[names.SchemaName]names.SchemaIdentifier, len(d.Imports))
	for _, id := range d.Imports {
		out[id.Name()] = id
	}
	return out
}
