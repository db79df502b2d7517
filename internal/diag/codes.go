package diag

// Code identifies a class of diagnostic.
type Code string

// Name grammar violations, raised while binding.
const (
	SchemaNameInvalid    Code = "SCHEMA_NAME_INVALID"
	TypeNameInvalid      Code = "TYPE_NAME_INVALID"
	AttributeNameInvalid Code = "ATTRIBUTE_NAME_INVALID"
)

// Reference and structural errors raised by the parser, binder and loader.
const (
	SyntaxError              Code = "SYNTAX_ERROR"
	SchemaNonexistent        Code = "SCHEMA_NONEXISTENT"
	TypeNonexistent          Code = "TYPE_NONEXISTENT"
	SourceError              Code = "SOURCE_ERROR"
	CyclicImport             Code = "CYCLIC_IMPORT"
	SchemaIdentifierMismatch Code = "SCHEMA_IDENTIFIER_MISMATCH"
	ImportDuplicate          Code = "IMPORT_DUPLICATE"
	TypeDuplicate            Code = "TYPE_DUPLICATE"
	AttributeDuplicate       Code = "ATTRIBUTE_DUPLICATE"
)

// Resolver diagnostics.
const (
	SchemaNotFound        Code = "SCHEMA_NOT_FOUND"
	SchemaDirectoryFailed Code = "SCHEMA_DIRECTORY_FAILED"
	VersionConflict       Code = "VERSION_CONFLICT"
	CircularImport        Code = "CIRCULAR_IMPORT"
)

// Validator diagnostics. The validator also raises SchemaNotFound.
const (
	AttributeNotFound         Code = "ATTRIBUTE_NOT_FOUND"
	TypeError                 Code = "TYPE_ERROR"
	AttributeCardinalityError Code = "ATTRIBUTE_CARDINALITY_ERROR"
)

func (c Code) String() string { return string(c) }
