package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/store"
	"github.com/io7m/ironpage-sub000/internal/tui"
	"github.com/io7m/ironpage-sub000/internal/ui"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

func newStoreCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the PostgreSQL schema store",
		Long: `The schema store keeps schema sources in PostgreSQL so that every user of
the database resolves the same schemas. It is configured with
store.connection_string in ironpage.yaml or IRONPAGE_DATABASE_URL.

Available commands:
  init     Create the store tables
  status   Show the applied store version
  publish  Compile schema files and store their sources
  list     List stored schemas
  delete   Remove a stored schema

Examples:
  IRONPAGE_DATABASE_URL=postgres://localhost/metadata ironpage store init
  ironpage store publish ./schemas/com.example.book/1.0.xml`,
	}
	cmd.AddCommand(
		newStoreInitCommand(opts),
		newStoreStatusCommand(opts),
		newStorePublishCommand(opts),
		newStoreListCommand(opts),
		newStoreDeleteCommand(opts),
	)
	return cmd
}

// withStore runs fn against the configured store inside the store timeout.
func withStore(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, env *environment, s *store.Store) error) error {
	env, err := newEnvironment(cmd, opts)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := env.storeContext(cmd.Context())
	defer cancel()

	s, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, env, s)
}

func newStoreInitCommand(opts *globalOptions) *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the store tables",
		Long:  "Create the store tables if they do not exist. Running init again is harmless.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := store.LoadDDL(version); err != nil {
				return usageError("%v", err)
			}
			return withStore(cmd, opts, func(ctx context.Context, env *environment, s *store.Store) error {
				var applied store.Version
				_, err := tui.RunWithProgress(ctx, env.errOut, "Initializing schema store", func(ctx context.Context) (string, error) {
					v, err := s.Init(ctx, version)
					applied = v
					return fmt.Sprintf("Schema store at version %s", v), err
				})
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(env.out, map[string]string{"version": string(applied)})
				}
				success(env.out, "Schema store initialized (version %s)", applied)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&version, "store-version", "", fmt.Sprintf("Store layout version %v (default: latest)", store.SupportedVersions()))
	return cmd
}

func newStoreStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the applied store version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, env *environment, s *store.Store) error {
				v, err := s.AppliedVersion(ctx)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(env.out, map[string]interface{}{
						"initialized": v != "",
						"version":     string(v),
						"latest":      string(store.Latest),
					})
				}
				switch {
				case v == "":
					fmt.Fprintln(env.out, tui.WarningStyle.Render("Schema store is not initialized; run: ironpage store init"))
				case v != store.Latest:
					fmt.Fprintf(env.out, "Schema store at version %s (latest is %s)\n", v, store.Latest)
				default:
					success(env.out, "Schema store at version %s", v)
				}
				return nil
			})
		},
	}
}

func newStorePublishCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <file>...",
		Short: "Compile schema files and store their sources",
		Long: `Compile each schema file and store its source under the identifier it
declares. Files that fail to compile are not published. Publishing an
unchanged source again does nothing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, env *environment, s *store.Store) error {
				return runStorePublish(ctx, cmd, env, s, args)
			})
		},
	}
}

func runStorePublish(ctx context.Context, cmd *cobra.Command, env *environment, s *store.Store, paths []string) error {
	collector := &diag.Collector{}
	type pending struct {
		id   names.SchemaIdentifier
		data []byte
	}
	var queue []pending
	failed := false
	for _, path := range paths {
		compiled, data, ok, err := env.compileFile(cmd, path, collector)
		if err != nil {
			return err
		}
		if !ok {
			failed = true
			continue
		}
		queue = append(queue, pending{id: compiled.Schema.Identifier(), data: data})
	}
	if failed {
		if err := env.finish(false, collector, nil, nil); err != nil {
			return err
		}
		return fmt.Errorf("nothing published: %w", ironpage.ErrCompilationFailed)
	}

	var results []*store.PublishResult
	_, err := tui.RunWithProgress(ctx, env.errOut, fmt.Sprintf("Publishing %d schemas", len(queue)), func(ctx context.Context) (string, error) {
		for _, p := range queue {
			r, err := s.Publish(ctx, p.id, p.data)
			if err != nil {
				return "", err
			}
			results = append(results, r)
		}
		return fmt.Sprintf("Published %d schemas", len(results)), nil
	})
	if err != nil {
		return err
	}

	return env.finish(true, collector, results, func(w io.Writer) {
		for _, r := range results {
			fmt.Fprintf(w, "%s %-12s %s\n", tui.SymbolBullet, r.Status, r.Identifier)
		}
	})
}

func newStoreListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, env *environment, s *store.Store) error {
				entries, err := s.Entries(ctx)
				if err != nil {
					return err
				}
				if opts.json {
					if entries == nil {
						entries = []store.Entry{}
					}
					return writeJSON(env.out, entries)
				}
				for _, e := range entries {
					fmt.Fprintf(env.out, "%s  %s  %s\n",
						e.Identifier,
						tui.MutedStyle.Render(e.Checksum[:12]),
						e.PublishedAt.Format("2006-01-02 15:04:05Z07:00"))
				}
				return nil
			})
		},
	}
}

func newStoreDeleteCommand(opts *globalOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <schema:major:minor>",
		Short: "Remove a stored schema",
		Long: `Remove a schema source from the store. The command asks for the schema
identifier to be typed back unless --force is given. Without a terminal,
--force is required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := names.ParseSchemaIdentifier(args[0])
			if err != nil {
				return usageError("%v", err)
			}

			var approver ironpage.Approver
			switch {
			case force:
				approver = ui.NewForcedApprover(cmd.ErrOrStderr())
			case tui.IsInteractive():
				approver = ui.NewInteractiveApprover(cmd.InOrStdin(), cmd.ErrOrStderr())
			default:
				return usageError("refusing to delete %s without --force in a non-interactive session", id)
			}

			return withStore(cmd, opts, func(ctx context.Context, env *environment, s *store.Store) error {
				approved, err := approver.RequestApproval(ctx, id.String())
				if err != nil {
					return err
				}
				if !approved {
					return fmt.Errorf("%w: %s was not deleted", ironpage.ErrApprovalDenied, id)
				}

				deleted, err := s.Delete(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("%w: %s is not in the store", ironpage.ErrSchemaNotFound, id)
				}
				success(env.out, "Deleted %s", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking for confirmation")
	return cmd
}
