// Package files groups file access helpers.
//
// The filesystem sub-package abstracts the operating system, embedded
// file systems and an in-memory tree behind FileSystemProvider so that
// schema sources can be read the same way from all three.
package files
