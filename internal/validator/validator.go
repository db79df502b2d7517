// Package validator checks an untyped document against compiled schemas.
//
// Every value is looked up in the document's imports, parsed according to
// the base primitive type of its attribute, and counted. Values that fail
// are reported and dropped; processing always continues with the next
// value. Once every value has been seen, each attribute of each imported
// schema is checked against its declared cardinality, including attributes
// the document never mentions.
package validator

import (
	"strconv"

	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/document"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// Request is the input to a validation.
type Request struct {
	// Schemas available to the document, typically the contents of a
	// resolved schema set. Only those the document imports are consulted.
	Schemas  []*schema.Schema
	Document *document.Document
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used to report panicking diagnostic receivers.
func WithLogger(logger ironpage.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// Validator validates exactly one document and is discarded afterwards.
type Validator struct {
	request Request
	sink    *diag.Tracker
	logger  ironpage.Logger

	imports map[names.SchemaName]*schema.Schema
	missing map[names.SchemaName]struct{}
	order   []names.SchemaIdentifier // imports without repeats, in document order
	counts  map[names.QualifiedName]int
}

// New creates a validator for request.
func New(request Request, sink diag.Sink, opts ...Option) *Validator {
	v := &Validator{
		request: request,
		imports: make(map[names.SchemaName]*schema.Schema),
		missing: make(map[names.SchemaName]struct{}),
		counts:  make(map[names.QualifiedName]int),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.sink = &diag.Tracker{Delegate: diag.Safe(sink, v.logger)}
	return v
}

// Execute validates the document. It returns false if any diagnostic was
// reported, in which case the typed document is nil.
func (v *Validator) Execute() (*document.TypedDocument, bool) {
	doc := v.request.Document
	if doc == nil {
		doc = &document.Document{}
	}

	v.collectImports(doc)

	result := &document.TypedDocument{
		URI:     doc.URI,
		Imports: append([]names.SchemaIdentifier(nil), v.order...),
	}
	for _, value := range doc.Values {
		if typed, ok := v.checkValue(doc.URI, value); ok {
			v.counts[value.Name]++
			result.Values = append(result.Values, document.TypedValue{Name: value.Name, Value: typed})
		}
	}

	v.checkCardinalities(doc)

	if v.sink.Failed() {
		return nil, false
	}
	return result, true
}

// collectImports maps each imported schema name to its compiled schema and
// starts a zero counter for every attribute the schema declares. A repeated
// import is ignored; a second version of an imported schema is a conflict
// and the first version is kept.
func (v *Validator) collectImports(doc *document.Document) {
	available := make(map[names.SchemaIdentifier]*schema.Schema, len(v.request.Schemas))
	for _, s := range v.request.Schemas {
		if s != nil {
			available[s.Identifier()] = s
		}
	}

	seen := make(map[names.SchemaName]names.SchemaIdentifier, len(doc.Imports))
	for _, id := range doc.Imports {
		if previous, dup := seen[id.Name()]; dup {
			if previous != id {
				v.sink.Receive(diag.Errorf(diag.VersionConflict,
					"The document imports schema %s as both %s and %s", id.Name(), previous, id).
					At(doc.URI, 0, 0).
					With("schema", string(id.Name())).
					With("first", previous.String()).
					With("second", id.String()))
			}
			continue
		}
		seen[id.Name()] = id
		v.order = append(v.order, id)

		s, ok := available[id]
		if !ok {
			v.sink.Receive(diag.Errorf(diag.SchemaNotFound,
				"The document imports schema %s but no such schema was provided", id).
				At(doc.URI, 0, 0).
				With("schema", id.String()).
				WithHint("Resolve the document's imports before validating it."))
			v.missing[id.Name()] = struct{}{}
			continue
		}
		v.imports[id.Name()] = s
		for _, attr := range s.Attributes() {
			v.counts[names.QualifiedName{Schema: id.Name(), Attribute: attr.Name}] = 0
		}
	}
}

func (v *Validator) checkValue(uri string, value document.Value) (document.Typed, bool) {
	s, imported := v.imports[value.Name.Schema]
	if !imported {
		if _, missing := v.missing[value.Name.Schema]; missing {
			// Already reported while collecting imports.
			v.sink.Fail()
			return nil, false
		}
		v.sink.Receive(diag.Errorf(diag.SchemaNotFound,
			"Value %s refers to schema %s, which the document does not import",
			value.Name, value.Name.Schema).
			At(uri, value.Line, 0).
			With("attribute", value.Name.String()).
			With("schema", string(value.Name.Schema)).
			WithHint("Add the schema to the document's imports."))
		return nil, false
	}

	attr, ok := s.Attribute(value.Name.Attribute)
	if !ok {
		v.sink.Receive(diag.Errorf(diag.AttributeNotFound,
			"Schema %s declares no attribute %s", s.Identifier(), value.Name.Attribute).
			At(uri, value.Line, 0).
			With("attribute", value.Name.String()).
			With("schema", s.Identifier().String()))
		return nil, false
	}

	base := attr.Type.BasePrimitiveType()
	typed, err := Parse(base, value.Raw)
	if err != nil {
		v.sink.Receive(diag.Errorf(diag.TypeError,
			"Value %q of attribute %s is not a valid %s: %v", value.Raw, value.Name, base, err).
			At(uri, value.Line, 0).
			With("attribute", value.Name.String()).
			With("type", attr.Type.String()).
			With("base", base.String()))
		return nil, false
	}
	return typed, true
}

// checkCardinalities walks imports in document order and attributes in
// name order so diagnostics are reported deterministically.
func (v *Validator) checkCardinalities(doc *document.Document) {
	for _, id := range v.order {
		s, ok := v.imports[id.Name()]
		if !ok {
			continue
		}
		for _, attrName := range s.AttributeNames() {
			attr, _ := s.Attribute(attrName)
			qualified := names.QualifiedName{Schema: id.Name(), Attribute: attrName}
			count := v.counts[qualified]
			if attr.Cardinality.Permits(count) {
				continue
			}
			v.sink.Receive(diag.Errorf(diag.AttributeCardinalityError,
				"Attribute %s must occur %s but occurs %d time(s)",
				qualified, attr.Cardinality.Describe(), count).
				At(doc.URI, 0, 0).
				With("attribute", qualified.String()).
				With("cardinality", attr.Cardinality.String()).
				With("count", strconv.Itoa(count)))
		}
	}
}
