// Package names implements the name grammar of the metadata schema language.
//
// Three kinds of names exist:
//
//   - SchemaName: dot separated segments, each matching [a-z][a-z0-9_]*,
//     at most 128 characters in total (e.g. "com.io7m.example").
//   - TypeName and AttributeName: a single segment matching
//     [a-z][a-z0-9_]{0,127}.
//
// Constructors reject invalid input with an error wrapping ErrInvalidName;
// they never truncate or normalize. The String method of every name returns
// exactly the text it was built from.
//
// SchemaIdentifier pairs a SchemaName with arbitrary precision major and
// minor versions. Identifiers are comparable values and can be used as map
// keys; their textual form is "name:major:minor".
package names
