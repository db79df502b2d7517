package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configDir   string
	schemaPaths []string
	verbose     bool
	json        bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "ironpage",
		Short: "Metadata schema compiler and document validator",
		Long: `ironpage compiles metadata schemas, resolves their imports, and validates
metadata documents against them.

Schemas are looked up, in order, in the configured schema paths
(<path>/<schema name>/<major>.<minor>.xml), in the builtin schemas, and in
the PostgreSQL schema store when one is configured.

Configuration is read from ironpage.yaml in the config directory. A .env
file in the same directory is loaded first; IRONPAGE_DATABASE_URL overrides
the store connection string.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Schema store unavailable
  12 - Schema compilation failed
  13 - Schema resolution failed
  14 - Document validation failed
  15 - Schema not found
  16 - Destructive operation not approved`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configDir, "config-dir", "C", ".", "Directory containing ironpage.yaml and .env")
	flags.StringArrayVarP(&opts.schemaPaths, "schema-path", "s", nil, "Additional schema directory, searched after the configured ones (repeatable)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	flags.BoolVar(&opts.json, "json", false, "Write results and diagnostics as JSON")
	_ = cmd.MarkPersistentFlagDirname("config-dir")
	_ = cmd.MarkPersistentFlagDirname("schema-path")

	cmd.AddCommand(
		newSchemaCommand(opts),
		newDocumentCommand(opts),
		newStoreCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return newRootCommand().Execute()
}

// usageError marks an error as command line misuse.
func usageError(format string, args ...interface{}) error {
	return fmt.Errorf("invalid argument: "+format, args...)
}
