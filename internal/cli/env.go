package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/io7m/ironpage-sub000/internal/builtin"
	"github.com/io7m/ironpage-sub000/internal/config"
	"github.com/io7m/ironpage-sub000/internal/db"
	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/files/filesystem"
	"github.com/io7m/ironpage-sub000/internal/loader"
	"github.com/io7m/ironpage-sub000/internal/logging"
	"github.com/io7m/ironpage-sub000/internal/resolver"
	"github.com/io7m/ironpage-sub000/internal/store"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// environment is everything a command needs once flags, .env and
// ironpage.yaml have been read.
type environment struct {
	opts   *globalOptions
	cfg    *config.Config
	logger ironpage.Logger
	out    io.Writer
	errOut io.Writer

	store      *store.Store
	closeStore func()
}

func newEnvironment(cmd *cobra.Command, opts *globalOptions) (*environment, error) {
	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), opts.verbose)

	if err := config.LoadEnvFile(opts.configDir); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(opts.configDir)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.SchemaPaths = append(cfg.SchemaPaths, opts.schemaPaths...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Verbose("Schema paths: %v (builtins: %t, store: %t)", cfg.SchemaPaths, cfg.UseBuiltins(), cfg.HasStore())

	return &environment{
		opts:   opts,
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

// openStore connects to the configured schema store. The connection is
// shared by every later call and released by close.
func (e *environment) openStore(ctx context.Context) (*store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	if !e.cfg.HasStore() {
		return nil, fmt.Errorf("%w: no schema store configured (set store.connection_string in %s or %s)",
			ironpage.ErrInvalidConfig, config.ConfigFileName, config.EnvDatabaseURL)
	}

	connector, err := db.NewConnector(e.cfg.ConnectionConfig(), e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Verbose("Connecting to schema store")
	pool, err := connector.Connect(ctx)
	if err != nil {
		if closer, ok := connector.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return nil, err
	}

	e.store = store.New(pool, store.WithLogger(e.logger))
	e.closeStore = func() {
		pool.Close()
		if closer, ok := connector.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				e.logger.Verbose("Failed to close connector: %v", err)
			}
		}
	}
	return e.store, nil
}

func (e *environment) close() {
	if e.closeStore != nil {
		e.closeStore()
		e.closeStore = nil
		e.store = nil
	}
}

// storeContext bounds ctx by the configured store timeout.
func (e *environment) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout, err := e.cfg.StoreTimeout()
	if err != nil {
		timeout = ironpage.DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// source chains the schema paths, the builtin schemas and the store, in
// that order.
func (e *environment) source(ctx context.Context) (loader.ChainSource, error) {
	var chain loader.ChainSource
	if len(e.cfg.SchemaPaths) > 0 {
		chain = append(chain, loader.NewFileSource(filesystem.NewOSFileSystem(), e.cfg.SchemaPaths...))
	}
	if e.cfg.UseBuiltins() {
		chain = append(chain, builtin.Source())
	}
	if e.cfg.HasStore() {
		s, err := e.openStore(ctx)
		if err != nil {
			return nil, err
		}
		chain = append(chain, s)
	}
	return chain, nil
}

// newLoader builds a loader over the full source chain.
func (e *environment) newLoader(ctx context.Context, sink diag.Sink) (*loader.Loader, error) {
	src, err := e.source(ctx)
	if err != nil {
		return nil, err
	}
	return loader.New(src, sink,
		loader.WithLogger(e.logger),
		loader.WithContext(ctx),
		loader.WithMaxSourceSize(e.cfg.MaxSourceSize),
	), nil
}

// newResolver serves compiled schemas from l to a resolver.
func (e *environment) newResolver(l *loader.Loader) *resolver.Resolver {
	opts := []resolver.Option{resolver.WithLogger(e.logger)}
	if e.cfg.ConcurrentLookup {
		opts = append(opts, resolver.WithConcurrentLookup())
	}
	return resolver.New(resolver.NewRegistry(loader.NewDirectory(l)), opts...)
}
