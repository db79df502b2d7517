// Package builtin embeds the schemas that ship with ironpage.
package builtin

import (
	"embed"

	"github.com/io7m/ironpage-sub000/internal/files/filesystem"
	"github.com/io7m/ironpage-sub000/internal/loader"
	"github.com/io7m/ironpage-sub000/internal/names"
)

//go:embed schemas
var schemaFiles embed.FS

// DublinCore identifies the Dublin Core element set schema.
var DublinCore = names.MustSchemaIdentifier("com.io7m.ironpage.dublin_core", 1, 0)

// FileSystem exposes the embedded schema tree laid out as
// "<schema name>/<major>.<minor>.xml".
func FileSystem() filesystem.FileSystemProvider {
	return filesystem.NewFSFileSystem(schemaFiles, "schemas")
}

// Source returns a loader source serving the builtin schemas.
func Source() *loader.FileSource {
	return loader.NewFileSource(FileSystem(), ".")
}
