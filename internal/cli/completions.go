package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completeSchemaIdentifiers completes schema identifiers from every
// configured source. Completion never connects to the store.
func completeSchemaIdentifiers(opts *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		env, err := newEnvironment(cmd, opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		env.cfg.Store.ConnectionString = ""

		ids, err := env.listSchemas(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var matches []string
		for _, id := range ids {
			if s := id.String(); strings.HasPrefix(s, toComplete) {
				matches = append(matches, s)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp
	}
}
