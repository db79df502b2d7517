package ast

import (
	"fmt"

	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
)

// BoundSchema is a schema document whose names are validated and whose
// type references are resolved. Declarations appear in canonical order:
// comments, imports, types, attributes.
type BoundSchema struct {
	Position
	URI          string
	Identifier   names.SchemaIdentifier
	Declarations []BoundDeclaration
}

// BoundDeclaration is one of BoundComment, BoundImport, BoundType or BoundAttribute.
type BoundDeclaration interface {
	Pos() Position
	boundDeclaration()
}

type BoundComment struct {
	Position
	Text string
}

// BoundImport carries the identifier and the schema the loader compiled for it.
type BoundImport struct {
	Position
	Identifier names.SchemaIdentifier
	Schema     *schema.Schema
}

type BoundType struct {
	Position
	Name    names.TypeName
	Base    schema.TypeReference
	Comment string
}

type BoundAttribute struct {
	Position
	Name        names.AttributeName
	Type        schema.TypeReference
	Cardinality schema.Cardinality
	Comment     string
}

func (BoundComment) boundDeclaration()   {}
func (BoundImport) boundDeclaration()    {}
func (BoundType) boundDeclaration()      {}
func (BoundAttribute) boundDeclaration() {}

// Compile builds the immutable compiled schema.
func (b *BoundSchema) Compile() (*schema.Schema, error) {
	var (
		imports    []names.SchemaIdentifier
		types      []schema.TypeNamed
		attributes []schema.Attribute
	)
	for _, d := range b.Declarations {
		switch d := d.(type) {
		case BoundComment:
		case BoundImport:
			imports = append(imports, d.Identifier)
		case BoundType:
			types = append(types, schema.TypeNamed{
				Schema:  b.Identifier,
				Name:    d.Name,
				Base:    d.Base,
				Comment: d.Comment,
			})
		case BoundAttribute:
			attributes = append(attributes, schema.Attribute{
				Name:        d.Name,
				Type:        d.Type,
				Cardinality: d.Cardinality,
				Comment:     d.Comment,
			})
		default:
			return nil, fmt.Errorf("unexpected declaration %T", d)
		}
	}
	return schema.New(b.Identifier, imports, types, attributes)
}

// Kind returns a short name for a declaration, used in diagnostics and listings.
func Kind(d interface{}) string {
	switch d.(type) {
	case ParsedComment, BoundComment:
		return "comment"
	case ParsedImport, BoundImport:
		return "import"
	case ParsedType, BoundType:
		return "type"
	case ParsedAttribute, BoundAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}
