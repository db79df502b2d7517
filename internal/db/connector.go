package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/io7m/ironpage-sub000/internal/logging"
	"github.com/io7m/ironpage-sub000/internal/retry"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

const (
	DefaultMaxConns        = 4
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = 5 * time.Minute
)

// ErrUnsupportedAuthMethod is returned for an unknown AuthMethod.
var ErrUnsupportedAuthMethod = ironpage.ErrUnsupportedAuthMethod

// AuthMethod selects how the store authenticates to PostgreSQL.
type AuthMethod string

const (
	AuthMethodStandard     AuthMethod = "standard"
	AuthMethodAWSIAM       AuthMethod = "aws"
	AuthMethodGoogleIAM    AuthMethod = "google"
	AuthMethodAzureEntraID AuthMethod = "azure"
)

// ParseAuthMethod accepts the names used in configuration files. The empty
// string means standard.
func ParseAuthMethod(text string) (AuthMethod, error) {
	switch m := AuthMethod(strings.ToLower(strings.TrimSpace(text))); m {
	case "":
		return AuthMethodStandard, nil
	case AuthMethodStandard, AuthMethodAWSIAM, AuthMethodGoogleIAM, AuthMethodAzureEntraID:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (expected standard, aws, google or azure)", ErrUnsupportedAuthMethod, text)
	}
}

// ConnectionConfig describes how to reach the store database.
type ConnectionConfig struct {
	// ConnString is a PostgreSQL URI or keyword/value string.
	ConnString string
	AuthMethod AuthMethod

	AWSRegion string

	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// GoogleInstance is the Cloud SQL instance connection name,
	// project:region:instance.
	GoogleInstance string
}

// Connector opens a verified connection pool.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// NewConnector returns the connector for cfg.AuthMethod.
func NewConnector(cfg ConnectionConfig, logger ironpage.Logger) (Connector, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if cfg.ConnString == "" {
		return nil, errors.New("connection string is empty")
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	switch cfg.AuthMethod {
	case AuthMethodStandard, "":
		return newPoolConnector(poolConfig, nil, logger), nil

	case AuthMethodAWSIAM:
		endpoint := fmt.Sprintf("%s:%d", poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port)
		provider, err := NewAWSIAMTokenProvider(endpoint, cfg.AWSRegion, poolConfig.ConnConfig.User)
		if err != nil {
			return nil, err
		}
		return newPoolConnector(poolConfig, provider, logger), nil

	case AuthMethodAzureEntraID:
		var provider TokenProvider
		if cfg.AzureTenantID != "" && cfg.AzureClientID != "" && cfg.AzureClientSecret != "" {
			provider, err = NewAzureServicePrincipalProvider(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret)
		} else {
			provider, err = NewAzureDefaultCredentialProvider()
		}
		if err != nil {
			return nil, err
		}
		return newPoolConnector(poolConfig, provider, logger), nil

	case AuthMethodGoogleIAM:
		if cfg.GoogleInstance == "" {
			return nil, errors.New("google Cloud SQL IAM auth requires an instance connection name (project:region:instance)")
		}
		if poolConfig.ConnConfig.User == "" {
			return nil, errors.New("google Cloud SQL IAM auth requires a user in the connection string")
		}
		return &GoogleCloudSQLConnector{poolConfig: poolConfig, instance: cfg.GoogleInstance, logger: logger}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAuthMethod, cfg.AuthMethod)
	}
}

// PoolConnector connects with a parsed pool configuration, optionally
// taking the password from a token provider.
type PoolConnector struct {
	poolConfig *pgxpool.Config
	tokens     TokenProvider
	logger     ironpage.Logger
	executor   *retry.Executor
}

func newPoolConnector(poolConfig *pgxpool.Config, tokens TokenProvider, logger ironpage.Logger) *PoolConnector {
	return &PoolConnector{
		poolConfig: poolConfig,
		tokens:     tokens,
		logger:     logger,
		executor:   retry.NewDefaultExecutor(logger),
	}
}

// Config returns the pool configuration Connect will use, with pool
// limits applied and the token hook installed.
func (c *PoolConnector) Config() *pgxpool.Config {
	cfg := c.poolConfig.Copy()
	configurePool(cfg)
	if c.tokens != nil {
		installTokenHook(cfg, c.tokens, c.logger)
	}
	return cfg
}

func (c *PoolConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return retry.Do(ctx, c.executor, func(ctx context.Context) (*pgxpool.Pool, error) {
		return openPool(ctx, c.Config())
	})
}

func configurePool(cfg *pgxpool.Config) {
	cfg.MaxConns = DefaultMaxConns
	cfg.MinConns = DefaultMinConns
	cfg.MaxConnIdleTime = DefaultMaxConnIdleTime
}

func openPool(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, wrapConnectionError(err, cfg)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cfg)
	}
	return pool, nil
}

// wrapConnectionError adds a likely cause to common connection failures.
// The original error stays in the chain for retry classification.
func wrapConnectionError(err error, cfg *pgxpool.Config) error {
	addr := fmt.Sprintf("%s:%d", cfg.ConnConfig.Host, cfg.ConnConfig.Port)
	database := cfg.ConnConfig.Database
	text := strings.ToLower(err.Error())

	var hint string
	switch {
	case strings.Contains(text, "connection refused"):
		hint = fmt.Sprintf("is PostgreSQL running on %s? (check: pg_isready -h %s -p %d)",
			addr, cfg.ConnConfig.Host, cfg.ConnConfig.Port)
	case strings.Contains(text, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q", cfg.ConnConfig.Host)
	case strings.Contains(text, "password authentication failed"):
		hint = "check the user and password in the connection string"
	case strings.Contains(text, "does not exist"):
		hint = fmt.Sprintf("create the database first: createdb %s", database)
	case strings.Contains(text, "timeout") || strings.Contains(text, "timed out"):
		hint = fmt.Sprintf("connection to %s timed out", addr)
	default:
		return fmt.Errorf("%w: %w", ironpage.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %s: %w", ironpage.ErrStoreUnavailable, hint, err)
}
