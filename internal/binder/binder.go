// Package binder turns a parsed schema document into a bound one.
//
// Binding runs four fixed passes regardless of source order: comments,
// imports, types, attributes. Names are validated against the name grammar,
// imports are compiled through a Loader, and named type references are
// resolved. A reference to the document's own schema only sees types bound
// earlier in the same document, so a type can never refer to itself or to
// a later sibling.
package binder

import (
	"github.com/io7m/ironpage-sub000/internal/ast"
	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// Loader compiles imported schemas on behalf of the binder.
//
// When Load returns false the reason has been published to the loader's
// own sink, possibly by an earlier call for the same target, so the binder
// does not report the failure a second time.
type Loader interface {
	Load(requester, target names.SchemaIdentifier) (*schema.Schema, bool)
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger used to report panicking diagnostic receivers.
func WithLogger(logger ironpage.Logger) Option {
	return func(b *Binder) { b.logger = logger }
}

// Binder binds exactly one document and is discarded afterwards.
type Binder struct {
	sink   *diag.Tracker
	loader Loader
	uri    string
	parsed *ast.ParsedSchema
	logger ironpage.Logger

	self          names.SchemaIdentifier
	imports       map[names.SchemaName]*schema.Schema
	failedImports map[names.SchemaName]struct{}
	types         map[names.TypeName]schema.TypeNamed
}

// New creates a binder for the parsed document at uri.
func New(sink diag.Sink, loader Loader, uri string, parsed *ast.ParsedSchema, opts ...Option) *Binder {
	b := &Binder{
		loader:        loader,
		uri:           uri,
		parsed:        parsed,
		imports:       make(map[names.SchemaName]*schema.Schema),
		failedImports: make(map[names.SchemaName]struct{}),
		types:         make(map[names.TypeName]schema.TypeNamed),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.sink = &diag.Tracker{Delegate: diag.Safe(sink, b.logger)}
	return b
}

// Execute binds the document. It returns false if any error was reported.
func (b *Binder) Execute() (*ast.BoundSchema, bool) {
	self, ok := b.bindSelf()
	if !ok {
		return nil, false
	}
	b.self = self

	result := &ast.BoundSchema{
		Position:   b.parsed.Position,
		URI:        b.uri,
		Identifier: self,
	}
	result.Declarations = append(result.Declarations, b.bindComments()...)
	result.Declarations = append(result.Declarations, b.bindImports()...)
	result.Declarations = append(result.Declarations, b.bindTypes()...)
	result.Declarations = append(result.Declarations, b.bindAttributes()...)

	if b.sink.Failed() {
		return nil, false
	}
	return result, true
}

func (b *Binder) report(pos ast.Position, code diag.Code, format string, args ...interface{}) {
	b.sink.Receive(diag.Errorf(code, format, args...).At(b.uri, pos.Line, pos.Column))
}

func (b *Binder) bindSelf() (names.SchemaIdentifier, bool) {
	return b.bindIdentifier(b.parsed.Position, b.parsed.ID, b.parsed.VersionMajor, b.parsed.VersionMinor)
}

func (b *Binder) bindIdentifier(pos ast.Position, id, major, minor string) (names.SchemaIdentifier, bool) {
	name, err := names.NewSchemaName(id)
	if err != nil {
		b.report(pos, diag.SchemaNameInvalid, "Invalid schema name %q", id)
		return names.SchemaIdentifier{}, false
	}
	majorV, err := names.ParseVersion(major)
	if err != nil {
		b.report(pos, diag.SchemaNameInvalid, "Schema %s: major version: %v", id, err)
		return names.SchemaIdentifier{}, false
	}
	minorV, err := names.ParseVersion(minor)
	if err != nil {
		b.report(pos, diag.SchemaNameInvalid, "Schema %s: minor version: %v", id, err)
		return names.SchemaIdentifier{}, false
	}
	identifier, err := names.NewSchemaIdentifier(name, majorV, minorV)
	if err != nil {
		b.report(pos, diag.SchemaNameInvalid, "%v", err)
		return names.SchemaIdentifier{}, false
	}
	return identifier, true
}

func (b *Binder) bindComments() []ast.BoundDeclaration {
	var out []ast.BoundDeclaration
	for _, d := range b.parsed.Declarations {
		if c, ok := d.(ast.ParsedComment); ok {
			out = append(out, ast.BoundComment{Position: c.Position, Text: c.Text})
		}
	}
	return out
}

func (b *Binder) bindImports() []ast.BoundDeclaration {
	var out []ast.BoundDeclaration
	seen := make(map[names.SchemaName]struct{})

	for _, d := range b.parsed.Declarations {
		imp, ok := d.(ast.ParsedImport)
		if !ok {
			continue
		}
		identifier, ok := b.bindIdentifier(imp.Position, imp.ID, imp.VersionMajor, imp.VersionMinor)
		if !ok {
			continue
		}
		if _, dup := seen[identifier.Name()]; dup {
			b.report(imp.Position, diag.ImportDuplicate,
				"Schema %s is imported more than once", identifier.Name())
			continue
		}
		seen[identifier.Name()] = struct{}{}

		loaded, ok := b.loader.Load(b.self, identifier)
		if !ok {
			b.failedImports[identifier.Name()] = struct{}{}
			b.sink.Fail()
			continue
		}
		b.imports[identifier.Name()] = loaded
		out = append(out, ast.BoundImport{Position: imp.Position, Identifier: identifier, Schema: loaded})
	}
	return out
}

func (b *Binder) bindTypes() []ast.BoundDeclaration {
	var out []ast.BoundDeclaration
	seen := make(map[names.TypeName]struct{})

	for _, d := range b.parsed.Declarations {
		decl, ok := d.(ast.ParsedType)
		if !ok {
			continue
		}
		name, err := names.NewTypeName(decl.Name)
		if err != nil {
			b.report(decl.Position, diag.TypeNameInvalid, "Invalid type name %q", decl.Name)
			continue
		}
		if _, dup := seen[name]; dup {
			b.report(decl.Position, diag.TypeDuplicate, "Type %s is declared more than once", name)
			continue
		}
		seen[name] = struct{}{}

		base, ok := b.bindReference(decl.Base)
		if !ok {
			continue
		}
		b.types[name] = schema.TypeNamed{Schema: b.self, Name: name, Base: base, Comment: decl.Comment}
		out = append(out, ast.BoundType{Position: decl.Position, Name: name, Base: base, Comment: decl.Comment})
	}
	return out
}

func (b *Binder) bindAttributes() []ast.BoundDeclaration {
	var out []ast.BoundDeclaration
	seen := make(map[names.AttributeName]struct{})

	for _, d := range b.parsed.Declarations {
		decl, ok := d.(ast.ParsedAttribute)
		if !ok {
			continue
		}
		name, err := names.NewAttributeName(decl.Name)
		if err != nil {
			b.report(decl.Position, diag.AttributeNameInvalid, "Invalid attribute name %q", decl.Name)
			continue
		}
		if _, dup := seen[name]; dup {
			b.report(decl.Position, diag.AttributeDuplicate, "Attribute %s is declared more than once", name)
			continue
		}
		seen[name] = struct{}{}

		ref, ok := b.bindReference(decl.Type)
		if !ok {
			continue
		}
		out = append(out, ast.BoundAttribute{
			Position:    decl.Position,
			Name:        name,
			Type:        ref,
			Cardinality: decl.Cardinality,
			Comment:     decl.Comment,
		})
	}
	return out
}

func (b *Binder) bindReference(ref ast.ParsedTypeReference) (schema.TypeReference, bool) {
	switch ref := ref.(type) {
	case ast.ParsedTypePrimitive:
		return schema.TypePrimitive{Type: ref.Type}, true
	case ast.ParsedTypeNamed:
		return b.bindNamed(ref)
	default:
		b.report(ast.Position{}, diag.TypeNonexistent, "Unsupported type reference %T", ref)
		return nil, false
	}
}

func (b *Binder) bindNamed(ref ast.ParsedTypeNamed) (schema.TypeReference, bool) {
	schemaName, err := names.NewSchemaName(ref.Schema)
	if err != nil {
		b.report(ref.Position, diag.SchemaNameInvalid, "Invalid schema name %q in type reference", ref.Schema)
		return nil, false
	}
	typeName, err := names.NewTypeName(ref.Type)
	if err != nil {
		b.report(ref.Position, diag.TypeNameInvalid, "Invalid type name %q in type reference", ref.Type)
		return nil, false
	}

	if schemaName == b.self.Name() {
		t, ok := b.types[typeName]
		if !ok {
			b.sink.Receive(diag.Errorf(diag.TypeNonexistent,
				"Type %s:%s is not declared before this point", schemaName, typeName).
				At(b.uri, ref.Line, ref.Column).
				With("schema", string(schemaName)).
				With("type", string(typeName)).
				WithHint("A type may only refer to types declared earlier in the same schema."))
			return nil, false
		}
		return schema.TypeNamedRef{Schema: b.self, Name: typeName, Base: t.BasePrimitiveType()}, true
	}

	imported, ok := b.imports[schemaName]
	if !ok {
		if _, failed := b.failedImports[schemaName]; failed {
			// Already reported while loading the import.
			b.sink.Fail()
			return nil, false
		}
		b.sink.Receive(diag.Errorf(diag.TypeNonexistent,
			"Type %s:%s refers to schema %s, which is not imported", schemaName, typeName, schemaName).
			At(b.uri, ref.Line, ref.Column).
			With("schema", string(schemaName)).
			With("type", string(typeName)).
			WithHint("Add an Import element for the schema."))
		return nil, false
	}

	t, ok := imported.Type(typeName)
	if !ok {
		b.sink.Receive(diag.Errorf(diag.TypeNonexistent,
			"Type %s does not exist in schema %s", typeName, imported.Identifier()).
			At(b.uri, ref.Line, ref.Column).
			With("schema", imported.Identifier().String()).
			With("type", string(typeName)))
		return nil, false
	}
	return schema.TypeNamedRef{Schema: imported.Identifier(), Name: typeName, Base: t.BasePrimitiveType()}, true
}
