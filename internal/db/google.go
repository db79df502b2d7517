package db

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// GoogleCloudSQLConnector dials Cloud SQL through the Cloud SQL connector
// with IAM database authentication. Close releases the dialer and must be
// called after the pool is closed.
type GoogleCloudSQLConnector struct {
	poolConfig *pgxpool.Config
	instance   string
	logger     ironpage.Logger

	mu     sync.Mutex
	dialer *cloudsqlconn.Dialer
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	cfg := c.poolConfig.Copy()
	configurePool(cfg)
	cfg.ConnConfig.TLSConfig = nil
	cfg.ConnConfig.Fallbacks = nil
	cfg.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}

	c.logger.Verbose("Connecting to Cloud SQL instance %s", c.instance)
	pool, err := openPool(ctx, cfg)
	if err != nil {
		dialer.Close()
		return nil, err
	}

	c.mu.Lock()
	c.dialer = dialer
	c.mu.Unlock()
	return pool, nil
}

func (c *GoogleCloudSQLConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}
