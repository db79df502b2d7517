package store

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
)

//go:embed sql/store-v1.sql
var storeV1SQL string

// Version identifies a revision of the store's tables.
type Version string

const (
	V1     Version = "1"
	Latest Version = V1
)

var ddlByVersion = map[Version]string{
	V1: storeV1SQL,
}

// LoadDDL returns the DDL for version, or the latest when version is empty.
func LoadDDL(version string) (string, Version, error) {
	v := Version(version)
	if v == "" {
		v = Latest
	}
	ddl, ok := ddlByVersion[v]
	if !ok {
		return "", "", fmt.Errorf("unsupported store version %q; supported: %v", version, SupportedVersions())
	}
	return ddl, v, nil
}

// SupportedVersions lists every store version, sorted.
func SupportedVersions() []Version {
	versions := make([]Version, 0, len(ddlByVersion))
	for v := range ddlByVersion {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions
}

// Init creates the store tables if needed and records the applied version.
// It is idempotent.
func (s *Store) Init(ctx context.Context, version string) (Version, error) {
	ddl, v, err := LoadDDL(version)
	if err != nil {
		return "", err
	}
	err = s.executor.Execute(ctx, func(ctx context.Context) error {
		if _, err := s.db.Exec(ctx, ddl); err != nil {
			return err
		}
		_, err := s.db.Exec(ctx,
			`INSERT INTO ironpage_store_version (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`,
			string(v))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to initialize store v%s: %w", v, err)
	}
	s.logger.Verbose("Schema store initialized at version %s", v)
	return v, nil
}

// AppliedVersion returns the newest version recorded by Init, or the empty
// version if the store has not been initialized.
func (s *Store) AppliedVersion(ctx context.Context) (Version, error) {
	v, err := doWithRetry(ctx, s, func(ctx context.Context) (Version, error) {
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT to_regclass('ironpage_store_version') IS NOT NULL`).Scan(&exists); err != nil {
			return "", err
		}
		if !exists {
			return "", nil
		}
		var version *string
		if err := s.db.QueryRow(ctx, `SELECT max(version) FROM ironpage_store_version`).Scan(&version); err != nil {
			return "", err
		}
		if version == nil {
			return "", nil
		}
		return Version(*version), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read store version: %w", err)
	}
	return v, nil
}
