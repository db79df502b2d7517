// Package loader compiles schemas by identifier.
//
// A Loader fetches source text from a Source, parses and binds it, and
// recursively loads the schema's imports through itself. Every schema is
// compiled at most once per Loader. Import cycles are detected with the set
// of identifiers on the current compile path and reported as CYCLIC_IMPORT.
//
// A Loader is confined to one session and is not safe for concurrent use.
// Directory wraps a Loader with a mutex so that it can serve a resolver.
package loader
