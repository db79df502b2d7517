// Package schema holds the compiled schema model shared by the binder,
// loader, resolver and validator.
//
// A Schema is built once by New and never mutated afterwards. It exposes
// its imports, types and attributes in declaration order and, through
// lazily built indices, by name in lexicographic order.
package schema
