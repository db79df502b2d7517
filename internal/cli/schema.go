package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/document"
	"github.com/io7m/ironpage-sub000/internal/loader"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/resolver"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

func newSchemaCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Compile, resolve and list metadata schemas",
		Long: `Schema commands work on schema sources without validating documents.

Available commands:
  compile  Parse and bind a schema file, loading its imports
  resolve  Compute the import closure of one or more schemas
  list     List every schema visible through the configured sources

Examples:
  # Compile a schema under development
  ironpage schema compile ./schemas/com.example.book/1.0.xml

  # Resolve the closure of a schema and print it as JSON
  ironpage schema resolve com.example.book:1:0 --json`,
	}
	cmd.AddCommand(
		newSchemaCompileCommand(opts),
		newSchemaResolveCommand(opts),
		newSchemaListCommand(opts),
	)
	return cmd
}

func newSchemaCompileCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a schema file",
		Long: `Parse and bind a schema file. Imported schemas are loaded from the
configured sources and compiled too. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaCompile(cmd, opts, args[0])
		},
	}
}

func runSchemaCompile(cmd *cobra.Command, opts *globalOptions, path string) error {
	env, err := newEnvironment(cmd, opts)
	if err != nil {
		return err
	}
	defer env.close()

	collector := &diag.Collector{}
	compiled, _, ok, err := env.compileFile(cmd, path, collector)
	if err != nil {
		return err
	}

	var result interface{}
	if ok {
		result = newSchemaView(compiled.Schema, compiled)
	}
	if err := env.finish(ok, collector, result, func(w io.Writer) {
		s := compiled.Schema
		success(w, "Compiled %s (%d types, %d attributes)", s.Identifier(), len(s.Types()), len(s.Attributes()))
		fmt.Fprintf(w, "  sha256: %s\n", compiled.Checksum)
	}); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", path, ironpage.ErrCompilationFailed)
	}
	return nil
}

// compileFile compiles the schema at path, loading imports through the
// environment's sources. A false result means diagnostics were published.
func (e *environment) compileFile(cmd *cobra.Command, path string, sink diag.Sink) (*loader.Compiled, []byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, false, fmt.Errorf("%w: %s", ironpage.ErrSchemaNotFound, path)
		}
		return nil, nil, false, err
	}

	l, err := e.newLoader(cmd.Context(), sink)
	if err != nil {
		return nil, nil, false, err
	}
	compiled, ok := l.Compile(path, bytes.NewReader(data))
	return compiled, data, ok, nil
}

func newSchemaResolveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <schema:major:minor>...",
		Short: "Resolve the import closure of schemas",
		Long: `Resolve the given schemas and everything they import, checking that no two
schemas in the closure share a name with different versions and that the
imports do not form a cycle.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeSchemaIdentifiers(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaResolve(cmd, opts, args)
		},
	}
}

func runSchemaResolve(cmd *cobra.Command, opts *globalOptions, args []string) error {
	ids, err := document.ParseImports(args)
	if err != nil {
		return usageError("%v", err)
	}

	env, err := newEnvironment(cmd, opts)
	if err != nil {
		return err
	}
	defer env.close()

	collector := &diag.Collector{}
	set, ok, err := env.resolve(cmd, ids, collector)
	if err != nil {
		return err
	}

	var views []schemaView
	if ok {
		for _, s := range set.Sorted() {
			views = append(views, newSchemaView(s, nil))
		}
	}
	if err := env.finish(ok, collector, views, func(w io.Writer) {
		success(w, "Resolved %d schemas", len(views))
		for _, s := range set.Sorted() {
			fmt.Fprintf(w, "  %s\n", s.Identifier())
			for _, imported := range s.Imports() {
				fmt.Fprintf(w, "    imports %s\n", imported)
			}
		}
	}); err != nil {
		return err
	}
	if !ok {
		return ironpage.ErrResolutionFailed
	}
	return nil
}

// resolve computes the closure of ids with a fresh loader.
func (e *environment) resolve(cmd *cobra.Command, ids []names.SchemaIdentifier, sink diag.Sink) (*resolver.ResolvedSchemaSet, bool, error) {
	l, err := e.newLoader(cmd.Context(), sink)
	if err != nil {
		return nil, false, err
	}
	imports := make(map[names.SchemaName]names.SchemaIdentifier, len(ids))
	for _, id := range ids {
		imports[id.Name()] = id
	}
	set, ok := e.newResolver(l).Resolve(cmd.Context(), imports, sink)
	return set, ok, nil
}

func newSchemaListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}
			defer env.close()

			ids, err := env.listSchemas(cmd)
			if err != nil {
				return err
			}
			if opts.json {
				out := make([]string, len(ids))
				for i, id := range ids {
					out[i] = id.String()
				}
				return writeJSON(env.out, out)
			}
			for _, id := range ids {
				fmt.Fprintln(env.out, id)
			}
			return nil
		},
	}
}

func (e *environment) listSchemas(cmd *cobra.Command) ([]names.SchemaIdentifier, error) {
	src, err := e.source(cmd.Context())
	if err != nil {
		return nil, err
	}
	return src.List(cmd.Context())
}

type typeView struct {
	Name    string `json:"name"`
	Base    string `json:"base"`
	Comment string `json:"comment,omitempty"`
}

type attributeView struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Primitive   string `json:"primitive"`
	Cardinality string `json:"cardinality"`
	Comment     string `json:"comment,omitempty"`
}

type schemaView struct {
	Identifier         string          `json:"identifier"`
	URI                string          `json:"uri,omitempty"`
	Checksum           string          `json:"checksum,omitempty"`
	NormalizedChecksum string          `json:"normalized_checksum,omitempty"`
	Imports            []string        `json:"imports"`
	Types              []typeView      `json:"types"`
	Attributes         []attributeView `json:"attributes"`
}

func newSchemaView(s *schema.Schema, compiled *loader.Compiled) schemaView {
	v := schemaView{
		Identifier: s.Identifier().String(),
		Imports:    []string{},
		Types:      []typeView{},
		Attributes: []attributeView{},
	}
	if compiled != nil {
		v.URI = compiled.URI
		v.Checksum = compiled.Checksum
		v.NormalizedChecksum = compiled.NormalizedChecksum
	}
	for _, id := range s.Imports() {
		v.Imports = append(v.Imports, id.String())
	}
	for _, t := range s.Types() {
		v.Types = append(v.Types, typeView{Name: string(t.Name), Base: t.Base.String(), Comment: t.Comment})
	}
	for _, a := range s.Attributes() {
		v.Attributes = append(v.Attributes, attributeView{
			Name:        string(a.Name),
			Type:        a.Type.String(),
			Primitive:   a.Type.BasePrimitiveType().String(),
			Cardinality: a.Cardinality.String(),
			Comment:     a.Comment,
		})
	}
	return v
}
