package schema

import "fmt"

// Cardinality is the permitted number of occurrences of an attribute in a document.
type Cardinality int

const (
	Exactly1 Cardinality = iota + 1
	ZeroOrOne
	ZeroOrMany
	OneOrMany
)

var cardinalityNames = map[Cardinality]string{
	Exactly1:   "CARDINALITY_1",
	ZeroOrOne:  "CARDINALITY_0_TO_1",
	ZeroOrMany: "CARDINALITY_0_TO_N",
	OneOrMany:  "CARDINALITY_1_TO_N",
}

// ParseCardinality parses the source syntax name of a cardinality.
func ParseCardinality(text string) (Cardinality, error) {
	for c, name := range cardinalityNames {
		if name == text {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unrecognized cardinality %q (expected one of CARDINALITY_1, CARDINALITY_0_TO_1, CARDINALITY_0_TO_N, CARDINALITY_1_TO_N)", text)
}

// Permits reports whether count occurrences satisfy the cardinality.
func (c Cardinality) Permits(count int) bool {
	switch c {
	case Exactly1:
		return count == 1
	case ZeroOrOne:
		return count <= 1
	case ZeroOrMany:
		return true
	case OneOrMany:
		return count >= 1
	default:
		return false
	}
}

// Describe returns a human readable form, e.g. "exactly one".
func (c Cardinality) Describe() string {
	switch c {
	case Exactly1:
		return "exactly one"
	case ZeroOrOne:
		return "at most one"
	case ZeroOrMany:
		return "any number"
	case OneOrMany:
		return "at least one"
	default:
		return c.String()
	}
}

func (c Cardinality) String() string {
	if name, ok := cardinalityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Cardinality(%d)", int(c))
}
