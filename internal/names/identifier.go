package names

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidVersion is wrapped by version parsing failures.
var ErrInvalidVersion = errors.New("invalid version")

// SchemaIdentifier names one version of a schema.
//
// Versions are held in canonical decimal form so that identifiers compare
// with == and work as map keys regardless of magnitude.
type SchemaIdentifier struct {
	name  SchemaName
	major string
	minor string
}

// NewSchemaIdentifier builds an identifier. Versions must be non-negative.
func NewSchemaIdentifier(name SchemaName, major, minor *big.Int) (SchemaIdentifier, error) {
	if !IsValidSchemaName(string(name)) {
		return SchemaIdentifier{}, fmt.Errorf("%w: schema name %q", ErrInvalidName, name)
	}
	if major == nil || major.Sign() < 0 {
		return SchemaIdentifier{}, fmt.Errorf("%w: major version must be a non-negative integer", ErrInvalidVersion)
	}
	if minor == nil || minor.Sign() < 0 {
		return SchemaIdentifier{}, fmt.Errorf("%w: minor version must be a non-negative integer", ErrInvalidVersion)
	}
	return SchemaIdentifier{name: name, major: major.String(), minor: minor.String()}, nil
}

// MustSchemaIdentifier builds an identifier from small versions, panicking on invalid input.
func MustSchemaIdentifier(name string, major, minor int64) SchemaIdentifier {
	id, err := NewSchemaIdentifier(MustSchemaName(name), big.NewInt(major), big.NewInt(minor))
	if err != nil {
		panic(err)
	}
	return id
}

// ParseVersion parses a non-negative decimal integer of any magnitude.
func ParseVersion(text string) (*big.Int, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidVersion)
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q is not a non-negative decimal integer", ErrInvalidVersion, text)
		}
	}
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, text)
	}
	return v, nil
}

// ParseSchemaIdentifier parses the "name:major:minor" form.
func ParseSchemaIdentifier(text string) (SchemaIdentifier, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return SchemaIdentifier{}, fmt.Errorf("schema identifier %q must have the form name:major:minor", text)
	}
	name, err := NewSchemaName(parts[0])
	if err != nil {
		return SchemaIdentifier{}, err
	}
	major, err := ParseVersion(parts[1])
	if err != nil {
		return SchemaIdentifier{}, fmt.Errorf("schema identifier %q: %w", text, err)
	}
	minor, err := ParseVersion(parts[2])
	if err != nil {
		return SchemaIdentifier{}, fmt.Errorf("schema identifier %q: %w", text, err)
	}
	return NewSchemaIdentifier(name, major, minor)
}

// MustParseSchemaIdentifier is like ParseSchemaIdentifier but panics on invalid input.
func MustParseSchemaIdentifier(text string) SchemaIdentifier {
	id, err := ParseSchemaIdentifier(text)
	if err != nil {
		panic(err)
	}
	return id
}

// Name returns the schema name.
func (id SchemaIdentifier) Name() SchemaName { return id.name }

// Major returns a fresh copy of the major version.
func (id SchemaIdentifier) Major() *big.Int { return mustInt(id.major) }

// Minor returns a fresh copy of the minor version.
func (id SchemaIdentifier) Minor() *big.Int { return mustInt(id.minor) }

// VersionString returns "major.minor".
func (id SchemaIdentifier) VersionString() string { return id.major + "." + id.minor }

// IsZero reports whether the identifier is the zero value.
func (id SchemaIdentifier) IsZero() bool { return id.name == "" }

func (id SchemaIdentifier) String() string {
	return string(id.name) + ":" + id.major + ":" + id.minor
}

// Compare orders identifiers by name, then major, then minor version.
func (id SchemaIdentifier) Compare(other SchemaIdentifier) int {
	if c := strings.Compare(string(id.name), string(other.name)); c != 0 {
		return c
	}
	if c := compareDecimal(id.major, other.major); c != 0 {
		return c
	}
	return compareDecimal(id.minor, other.minor)
}

// MarshalText implements encoding.TextMarshaler.
func (id SchemaIdentifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *SchemaIdentifier) UnmarshalText(text []byte) error {
	parsed, err := ParseSchemaIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// compareDecimal compares canonical non-negative decimal strings.
func compareDecimal(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func mustInt(text string) *big.Int {
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		panic(fmt.Sprintf("corrupt version %q", text))
	}
	return v
}
