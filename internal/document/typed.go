package document

import (
	"math/big"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
)

// Typed is the native representation of a value of some primitive type.
type Typed interface {
	Type() schema.PrimitiveType
	// String renders the value in its canonical lexical form.
	String() string
}

type (
	Boolean   bool
	Real      float64
	String    string
	Timestamp time.Time
	UUID      uuid.UUID
)

// Integer is an arbitrary precision integer.
type Integer struct{ Value *big.Int }

// URI is a parsed URI reference.
type URI struct{ Value *url.URL }

func (Boolean) Type() schema.PrimitiveType   { return schema.Boolean }
func (Integer) Type() schema.PrimitiveType   { return schema.Integer }
func (Real) Type() schema.PrimitiveType      { return schema.Real }
func (String) Type() schema.PrimitiveType    { return schema.String }
func (Timestamp) Type() schema.PrimitiveType { return schema.Timestamp }
func (URI) Type() schema.PrimitiveType       { return schema.URI }
func (UUID) Type() schema.PrimitiveType      { return schema.UUID }

func (v Boolean) String() string   { return strconv.FormatBool(bool(v)) }
func (v Integer) String() string   { return v.Value.String() }
func (v Real) String() string      { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v String) String() string    { return string(v) }
func (v Timestamp) String() string { return time.Time(v).Format(time.RFC3339Nano) }
func (v URI) String() string       { return v.Value.String() }
func (v UUID) String() string      { return uuid.UUID(v).String() }

// TypedValue is one validated attribute value.
type TypedValue struct {
	Name  names.QualifiedName
	Value Typed
}

// TypedDocument is a document whose values have been validated.
type TypedDocument struct {
	URI     string
	Imports []names.SchemaIdentifier
	Values  []TypedValue
}

// Lookup returns every value of the named attribute in document order.
func (d *TypedDocument) Lookup(name names.QualifiedName) []Typed {
	var out []Typed
	for _, v := range d.Values {
		if v.Name == name {
			out = append(out, v.Value)
		}
	}
	return out
}
