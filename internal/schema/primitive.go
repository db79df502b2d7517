package schema

import "fmt"

// PrimitiveType is the closed set of base types every type reduces to.
type PrimitiveType int

const (
	Boolean PrimitiveType = iota + 1
	Integer
	Real
	String
	Timestamp
	URI
	UUID
)

var primitiveNames = map[PrimitiveType]string{
	Boolean:   "BOOLEAN",
	Integer:   "INTEGER",
	Real:      "REAL",
	String:    "STRING",
	Timestamp: "TIMESTAMP",
	URI:       "URI",
	UUID:      "UUID",
}

// PrimitiveTypes lists every primitive type in declaration order.
func PrimitiveTypes() []PrimitiveType {
	return []PrimitiveType{Boolean, Integer, Real, String, Timestamp, URI, UUID}
}

// ParsePrimitiveType parses the source syntax name of a primitive type.
func ParsePrimitiveType(text string) (PrimitiveType, error) {
	for p, name := range primitiveNames {
		if name == text {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unrecognized primitive type %q (expected one of BOOLEAN, INTEGER, REAL, STRING, TIMESTAMP, URI, UUID)", text)
}

func (p PrimitiveType) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PrimitiveType(%d)", int(p))
}
