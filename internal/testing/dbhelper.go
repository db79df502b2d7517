// Package testing holds helpers for tests that need a PostgreSQL database.
package testing

import (
	"context"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/io7m/ironpage-sub000/internal/testinfra"
)

// ConnEnvVar names an existing server to test against instead of a container.
const ConnEnvVar = "IRONPAGE_TEST_CONN"

var (
	containerOnce sync.Once
	containerConn string
	containerErr  error
)

// The container lives until the test binary exits.
func startContainer() (string, error) {
	containerOnce.Do(func() {
		ctr, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			containerErr = err
			return
		}
		containerConn = ctr.ConnString
	})
	return containerConn, containerErr
}

// GetTestConnectionString returns the server to test against.
// Priority: IRONPAGE_TEST_CONN > auto-started container > skip.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(ConnEnvVar); connString != "" {
		return connString
	}
	connString, err := startContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", ConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips integration tests under -short.
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestDatabaseURL creates an empty database with a unique name and
// returns a connection string for it. The database is dropped when the test
// completes.
func NewTestDatabaseURL(t *testing.T) string {
	t.Helper()

	connString := RequireDatabase(t)
	ctx := context.Background()
	name := "ironpage_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test database creation: %v", err)
	}
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		admin.Close()
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		defer admin.Close()
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)"); err != nil {
			t.Logf("Warning: failed to drop database %s: %v", name, err)
		}
	})
	return withDatabase(connString, name)
}

// withDatabase points connString at another database. Both URL and
// keyword/value connection strings are accepted.
func withDatabase(connString, name string) string {
	if u, err := url.Parse(connString); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		u.Path = "/" + name
		return u.String()
	}
	return connString + " dbname=" + name
}

// NewTestDatabase creates an empty database with a unique name and returns
// a pool connected to it. Both are removed when the test completes.
func NewTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	connString := NewTestDatabaseURL(t)
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
