package names

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxNameLength is the maximum length of any name.
const MaxNameLength = 128

// ErrInvalidName is wrapped by every name construction failure.
var ErrInvalidName = errors.New("invalid name")

var (
	schemaNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)
	localNamePattern  = regexp.MustCompile(`^[a-z][a-z0-9_]{0,127}$`)
)

// IsValidSchemaName reports whether text is a valid schema name.
func IsValidSchemaName(text string) bool {
	return len(text) <= MaxNameLength && schemaNamePattern.MatchString(text)
}

// IsValidTypeName reports whether text is a valid type name.
func IsValidTypeName(text string) bool {
	return localNamePattern.MatchString(text)
}

// IsValidAttributeName reports whether text is a valid attribute name.
func IsValidAttributeName(text string) bool {
	return localNamePattern.MatchString(text)
}

// SchemaName is a validated schema name.
type SchemaName string

// NewSchemaName validates text as a schema name.
func NewSchemaName(text string) (SchemaName, error) {
	if !IsValidSchemaName(text) {
		return "", fmt.Errorf("%w: schema name %q must match %s and be at most %d characters",
			ErrInvalidName, text, schemaNamePattern, MaxNameLength)
	}
	return SchemaName(text), nil
}

// MustSchemaName is like NewSchemaName but panics on invalid input.
func MustSchemaName(text string) SchemaName {
	n, err := NewSchemaName(text)
	if err != nil {
		panic(err)
	}
	return n
}

func (n SchemaName) String() string { return string(n) }

// TypeName is a validated type name.
type TypeName string

// NewTypeName validates text as a type name.
func NewTypeName(text string) (TypeName, error) {
	if !IsValidTypeName(text) {
		return "", fmt.Errorf("%w: type name %q must match %s", ErrInvalidName, text, localNamePattern)
	}
	return TypeName(text), nil
}

// MustTypeName is like NewTypeName but panics on invalid input.
func MustTypeName(text string) TypeName {
	n, err := NewTypeName(text)
	if err != nil {
		panic(err)
	}
	return n
}

func (n TypeName) String() string { return string(n) }

// AttributeName is a validated attribute name.
type AttributeName string

// NewAttributeName validates text as an attribute name.
func NewAttributeName(text string) (AttributeName, error) {
	if !IsValidAttributeName(text) {
		return "", fmt.Errorf("%w: attribute name %q must match %s", ErrInvalidName, text, localNamePattern)
	}
	return AttributeName(text), nil
}

// MustAttributeName is like NewAttributeName but panics on invalid input.
func MustAttributeName(text string) AttributeName {
	n, err := NewAttributeName(text)
	if err != nil {
		panic(err)
	}
	return n
}

func (n AttributeName) String() string { return string(n) }
