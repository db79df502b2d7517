package ast

import "github.com/io7m/ironpage-sub000/internal/schema"

// ParsedSchema is a schema document as read from source. Names are not yet
// validated and declarations are kept in source order.
type ParsedSchema struct {
	Position
	URI          string
	ID           string
	VersionMajor string
	VersionMinor string
	Declarations []ParsedDeclaration
}

// ParsedDeclaration is one of ParsedComment, ParsedImport, ParsedType or ParsedAttribute.
type ParsedDeclaration interface {
	Pos() Position
	parsedDeclaration()
}

type ParsedComment struct {
	Position
	Text string
}

type ParsedImport struct {
	Position
	ID           string
	VersionMajor string
	VersionMinor string
}

type ParsedType struct {
	Position
	Name    string
	Base    ParsedTypeReference
	Comment string
}

type ParsedAttribute struct {
	Position
	Name        string
	Type        ParsedTypeReference
	Cardinality schema.Cardinality
	Comment     string
}

func (ParsedComment) parsedDeclaration()   {}
func (ParsedImport) parsedDeclaration()    {}
func (ParsedType) parsedDeclaration()      {}
func (ParsedAttribute) parsedDeclaration() {}

// ParsedTypeReference is either ParsedTypePrimitive or ParsedTypeNamed.
type ParsedTypeReference interface {
	Pos() Position
	parsedTypeReference()
}

type ParsedTypePrimitive struct {
	Position
	Type schema.PrimitiveType
}

// ParsedTypeNamed refers to a type by schema name and type name.
type ParsedTypeNamed struct {
	Position
	Schema string
	Type   string
}

func (ParsedTypePrimitive) parsedTypeReference() {}
func (ParsedTypeNamed) parsedTypeReference()     {}
