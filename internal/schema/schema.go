package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/io7m/ironpage-sub000/internal/names"
)

// ErrDuplicateName is returned by New when a list contains the same name twice.
var ErrDuplicateName = errors.New("duplicate name")

// TypeNamed is a type declared by a schema.
type TypeNamed struct {
	Schema  names.SchemaIdentifier
	Name    names.TypeName
	Base    TypeReference
	Comment string
}

// BasePrimitiveType returns the primitive root of the type.
func (t TypeNamed) BasePrimitiveType() PrimitiveType { return t.Base.BasePrimitiveType() }

// Attribute is an attribute declared by a schema.
type Attribute struct {
	Name        names.AttributeName
	Type        TypeReference
	Cardinality Cardinality
	Comment     string
}

// Schema is a compiled schema. It is immutable once built by New.
type Schema struct {
	identifier names.SchemaIdentifier
	imports    []names.SchemaIdentifier
	types      []TypeNamed
	attributes []Attribute

	indexOnce   sync.Once
	importsByNm map[names.SchemaName]names.SchemaIdentifier
	typesByNm   map[names.TypeName]TypeNamed
	attrsByNm   map[names.AttributeName]Attribute
	importNames []names.SchemaName
	typeNames   []names.TypeName
	attrNames   []names.AttributeName
}

// New builds a schema, failing if any of the three lists contains a
// duplicate name. The slices are copied.
func New(
	identifier names.SchemaIdentifier,
	imports []names.SchemaIdentifier,
	types []TypeNamed,
	attributes []Attribute,
) (*Schema, error) {
	var errs []error

	seenImports := make(map[names.SchemaName]struct{}, len(imports))
	for _, i := range imports {
		if _, dup := seenImports[i.Name()]; dup {
			errs = append(errs, fmt.Errorf("%w: import %s", ErrDuplicateName, i.Name()))
		}
		seenImports[i.Name()] = struct{}{}
	}

	seenTypes := make(map[names.TypeName]struct{}, len(types))
	for _, t := range types {
		if _, dup := seenTypes[t.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: type %s", ErrDuplicateName, t.Name))
		}
		seenTypes[t.Name] = struct{}{}
	}

	seenAttrs := make(map[names.AttributeName]struct{}, len(attributes))
	for _, a := range attributes {
		if _, dup := seenAttrs[a.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: attribute %s", ErrDuplicateName, a.Name))
		}
		seenAttrs[a.Name] = struct{}{}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("schema %s: %w", identifier, err)
	}

	return &Schema{
		identifier: identifier,
		imports:    append([]names.SchemaIdentifier(nil), imports...),
		types:      append([]TypeNamed(nil), types...),
		attributes: append([]Attribute(nil), attributes...),
	}, nil
}

// MustNew is like New but panics on duplicates.
func MustNew(
	identifier names.SchemaIdentifier,
	imports []names.SchemaIdentifier,
	types []TypeNamed,
	attributes []Attribute,
) *Schema {
	s, err := New(identifier, imports, types, attributes)
	if err != nil {
		panic(err)
	}
	return s
}

// Identifier returns the schema's own identifier.
func (s *Schema) Identifier() names.SchemaIdentifier { return s.identifier }

// Imports returns the imported identifiers in declaration order.
func (s *Schema) Imports() []names.SchemaIdentifier {
	return append([]names.SchemaIdentifier(nil), s.imports...)
}

// Types returns the declared types in declaration order.
func (s *Schema) Types() []TypeNamed { return append([]TypeNamed(nil), s.types...) }

// Attributes returns the declared attributes in declaration order.
func (s *Schema) Attributes() []Attribute { return append([]Attribute(nil), s.attributes...) }

func (s *Schema) index() {
	s.indexOnce.Do(func() {
		s.importsByNm = make(map[names.SchemaName]names.SchemaIdentifier, len(s.imports))
		for _, i := range s.imports {
			s.importsByNm[i.Name()] = i
			s.importNames = append(s.importNames, i.Name())
		}
		sort.Slice(s.importNames, func(i, j int) bool { return s.importNames[i] < s.importNames[j] })

		s.typesByNm = make(map[names.TypeName]TypeNamed, len(s.types))
		for _, t := range s.types {
			s.typesByNm[t.Name] = t
			s.typeNames = append(s.typeNames, t.Name)
		}
		sort.Slice(s.typeNames, func(i, j int) bool { return s.typeNames[i] < s.typeNames[j] })

		s.attrsByNm = make(map[names.AttributeName]Attribute, len(s.attributes))
		for _, a := range s.attributes {
			s.attrsByNm[a.Name] = a
			s.attrNames = append(s.attrNames, a.Name)
		}
		sort.Slice(s.attrNames, func(i, j int) bool { return s.attrNames[i] < s.attrNames[j] })
	})
}

// Import returns the imported identifier with the given schema name.
func (s *Schema) Import(name names.SchemaName) (names.SchemaIdentifier, bool) {
	s.index()
	id, ok := s.importsByNm[name]
	return id, ok
}

// Type returns the declared type with the given name.
func (s *Schema) Type(name names.TypeName) (TypeNamed, bool) {
	s.index()
	t, ok := s.typesByNm[name]
	return t, ok
}

// Attribute returns the declared attribute with the given name.
func (s *Schema) Attribute(name names.AttributeName) (Attribute, bool) {
	s.index()
	a, ok := s.attrsByNm[name]
	return a, ok
}

// ImportNames returns the imported schema names in lexicographic order.
func (s *Schema) ImportNames() []names.SchemaName {
	s.index()
	return append([]names.SchemaName(nil), s.importNames...)
}

// TypeNames returns the declared type names in lexicographic order.
func (s *Schema) TypeNames() []names.TypeName {
	s.index()
	return append([]names.TypeName(nil), s.typeNames...)
}

// AttributeNames returns the declared attribute names in lexicographic order.
func (s *Schema) AttributeNames() []names.AttributeName {
	s.index()
	return append([]names.AttributeName(nil), s.attrNames...)
}

// ImportsByName returns a copy of the imports index.
func (s *Schema) ImportsByName() map[names.SchemaName]names.SchemaIdentifier {
	s.index()
	out := make(map[names.SchemaName]names.SchemaIdentifier, len(s.importsByNm))
	for k, v := range s.importsByNm {
		out[k] = v
	}
	return out
}

// TypesByName returns a copy of the types index.
func (s *Schema) TypesByName() map[names.TypeName]TypeNamed {
	s.index()
	out := make(map[names.TypeName]TypeNamed, len(s.typesByNm))
	for k, v := range s.typesByNm {
		out[k] = v
	}
	return out
}

// AttributesByName returns a copy of the attributes index.
func (s *Schema) AttributesByName() map[names.AttributeName]Attribute {
	s.index()
	out := make(map[names.AttributeName]Attribute, len(s.attrsByNm))
	for k, v := range s.attrsByNm {
		out[k] = v
	}
	return out
}
