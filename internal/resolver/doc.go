// Package resolver combines already compiled schemas into one consistent
// import closure.
//
// Resolve walks the imports of a root set depth first, in sorted root
// order, looking each schema up in a Registry of directories. It builds one
// DAG of "imports" edges per request and uses it to explain cycles
// (CIRCULAR_IMPORT) and conflicting versions (VERSION_CONFLICT). The walk
// never stops at the first problem; every diagnostic it can find is
// published and the result is absent if any of them is an error.
package resolver
