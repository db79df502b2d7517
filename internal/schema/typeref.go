package schema

import (
	"github.com/io7m/ironpage-sub000/internal/names"
)

// TypeReference is either a primitive type or a reference to a named type.
type TypeReference interface {
	// BasePrimitiveType follows named references to their primitive root.
	BasePrimitiveType() PrimitiveType
	String() string
	isTypeReference()
}

// TypePrimitive refers directly to a primitive type.
type TypePrimitive struct {
	Type PrimitiveType
}

func (t TypePrimitive) BasePrimitiveType() PrimitiveType { return t.Type }
func (t TypePrimitive) String() string                  { return t.Type.String() }
func (TypePrimitive) isTypeReference()                   {}

// TypeNamedRef refers to a type declared in some schema. Base is the
// primitive root of the referenced type, fixed when the reference was bound.
type TypeNamedRef struct {
	Schema names.SchemaIdentifier
	Name   names.TypeName
	Base   PrimitiveType
}

func (t TypeNamedRef) BasePrimitiveType() PrimitiveType { return t.Base }
func (t TypeNamedRef) String() string {
	return t.Schema.String() + ":" + string(t.Name)
}
func (TypeNamedRef) isTypeReference() {}
