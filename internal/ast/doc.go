// Package ast defines the declarations of a schema document in two
// phases.
//
// The Parsed family is produced by the parser and carries raw strings and
// source positions. The Bound family is produced by the binder and carries
// validated names and resolved type references. BoundSchema.Compile turns a
// bound document into the immutable schema.Schema consumed downstream.
package ast
