package names

import (
	"fmt"
	"strings"
)

// QualifiedName identifies an attribute outside its declaring schema.
type QualifiedName struct {
	Schema    SchemaName
	Attribute AttributeName
}

// ParseQualifiedName parses the "schema:attribute" form.
func ParseQualifiedName(text string) (QualifiedName, error) {
	schemaPart, attrPart, ok := strings.Cut(text, ":")
	if !ok {
		return QualifiedName{}, fmt.Errorf("qualified name %q must have the form schema:attribute", text)
	}
	s, err := NewSchemaName(schemaPart)
	if err != nil {
		return QualifiedName{}, err
	}
	a, err := NewAttributeName(attrPart)
	if err != nil {
		return QualifiedName{}, err
	}
	return QualifiedName{Schema: s, Attribute: a}, nil
}

func (q QualifiedName) String() string {
	return string(q.Schema) + ":" + string(q.Attribute)
}

// Compare orders qualified names by schema then attribute.
func (q QualifiedName) Compare(other QualifiedName) int {
	if c := strings.Compare(string(q.Schema), string(other.Schema)); c != 0 {
		return c
	}
	return strings.Compare(string(q.Attribute), string(other.Attribute))
}
