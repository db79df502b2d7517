package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/document"
	"github.com/io7m/ironpage-sub000/internal/validator"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

func newDocumentCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Validate metadata documents",
	}
	cmd.AddCommand(newDocumentValidateCommand(opts))
	return cmd
}

type documentValidateFlags struct {
	values  []string
	imports []string
	print   bool
}

func newDocumentValidateCommand(opts *globalOptions) *cobra.Command {
	flags := &documentValidateFlags{}
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a metadata document",
		Long: `Validate a YAML metadata document against the schemas it imports.

The document imports schemas by identifier and lists attribute values by
qualified name:

  imports:
    - com.io7m.ironpage.dublin_core:1:0
  values:
    - name: com.io7m.ironpage.dublin_core:title
      value: Moby Dick

Values and imports given with --value and --import are added to the
document. Without a file the document consists of the flags alone. Use "-"
to read the document from stdin.

Examples:
  ironpage document validate book.yaml
  ironpage document validate --import com.io7m.ironpage.dublin_core:1:0 \
    --value com.io7m.ironpage.dublin_core:title="Moby Dick" --print`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentValidate(cmd, opts, flags, args)
		},
	}
	cmd.Flags().StringArrayVar(&flags.values, "value", nil, "Attribute value in schema:attribute=value form (repeatable)")
	cmd.Flags().StringArrayVar(&flags.imports, "import", nil, "Schema import in schema:major:minor form (repeatable)")
	cmd.Flags().BoolVar(&flags.print, "print", false, "Print the validated document with resolved types")
	_ = cmd.RegisterFlagCompletionFunc("import", completeSchemaIdentifiers(opts))
	return cmd
}

func runDocumentValidate(cmd *cobra.Command, opts *globalOptions, flags *documentValidateFlags, args []string) error {
	doc, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	if err := extendDocument(doc, flags); err != nil {
		return err
	}

	env, err := newEnvironment(cmd, opts)
	if err != nil {
		return err
	}
	defer env.close()

	env.logger.Verbose("Validating %s: %d imports, %d values", doc.URI, len(doc.Imports), len(doc.Values))

	collector := &diag.Collector{}
	set, ok, err := env.resolve(cmd, doc.Imports, collector)
	if err != nil {
		return err
	}
	if !ok {
		if err := env.finish(false, collector, nil, nil); err != nil {
			return err
		}
		return fmt.Errorf("%s: %w", doc.URI, ironpage.ErrResolutionFailed)
	}

	typed, ok := validator.New(
		validator.Request{Schemas: set.Sorted(), Document: doc},
		collector,
		validator.WithLogger(env.logger),
	).Execute()

	var result interface{}
	if ok {
		result = document.TypedView(typed)
	}
	var printErr error
	if err := env.finish(ok, collector, result, func(w io.Writer) {
		success(w, "%s is valid (%d values)", typed.URI, len(typed.Values))
		if flags.print {
			printErr = document.EncodeTypedYAML(w, typed)
		}
	}); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", doc.URI, ironpage.ErrValidationFailed)
	}
	return printErr
}

func readDocument(cmd *cobra.Command, args []string) (*document.Document, error) {
	if len(args) == 0 {
		return &document.Document{URI: "command-line"}, nil
	}

	path := args[0]
	var r io.Reader
	uri := path
	if path == "-" {
		r = cmd.InOrStdin()
		uri = "stdin"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()
		r = f
	}

	doc, err := document.DecodeYAML(r, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ironpage.ErrValidationFailed, err)
	}
	return doc, nil
}

// extendDocument adds the --import and --value flags to doc.
func extendDocument(doc *document.Document, flags *documentValidateFlags) error {
	if len(flags.imports) > 0 {
		all := make([]string, 0, len(doc.Imports)+len(flags.imports))
		for _, id := range doc.Imports {
			all = append(all, id.String())
		}
		all = append(all, flags.imports...)
		imports, err := document.ParseImports(all)
		if err != nil {
			return usageError("%v", err)
		}
		doc.Imports = imports
	}

	values, err := document.ParsePairs(flags.values)
	if err != nil {
		return usageError("%v", err)
	}
	doc.Values = append(doc.Values, values...)
	return nil
}
