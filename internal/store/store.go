// Package store keeps published schema sources in PostgreSQL.
//
// A Store is a loader.Source and loader.Lister, so schemas published to the
// database can be imported and resolved like schemas on disk. Every query
// runs through a retry executor that re-runs transient PostgreSQL failures.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/io7m/ironpage-sub000/internal/checksum"
	"github.com/io7m/ironpage-sub000/internal/loader"
	"github.com/io7m/ironpage-sub000/internal/logging"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/retry"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PublishStatus describes what Publish did.
type PublishStatus int

const (
	Inserted PublishStatus = iota + 1
	Updated
	// Reformatted means the source changed but its normalized form did not.
	Reformatted
	Unchanged
)

func (s PublishStatus) String() string {
	switch s {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Reformatted:
		return "reformatted"
	case Unchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("PublishStatus(%d)", int(s))
	}
}

// MarshalText renders the status for JSON output.
func (s PublishStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// PublishResult is returned by Publish.
type PublishResult struct {
	Identifier names.SchemaIdentifier `json:"identifier"`
	Status     PublishStatus          `json:"status"`
	Checksum   string                 `json:"checksum"`
}

// Entry describes one stored schema source.
type Entry struct {
	Identifier         names.SchemaIdentifier `json:"identifier"`
	Checksum           string                 `json:"checksum"`
	NormalizedChecksum string                 `json:"normalized_checksum"`
	PublishedAt        time.Time              `json:"published_at"`
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger ironpage.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithExecutor replaces the default retry executor.
func WithExecutor(executor *retry.Executor) Option {
	return func(s *Store) { s.executor = executor }
}

func WithChecksumCalculator(c checksum.Calculator) Option {
	return func(s *Store) { s.checksums = c }
}

// Store is safe for concurrent use when its DB is.
type Store struct {
	db        DB
	logger    ironpage.Logger
	executor  *retry.Executor
	checksums checksum.Calculator
}

var (
	_ loader.Source = (*Store)(nil)
	_ loader.Lister = (*Store)(nil)
)

func New(db DB, opts ...Option) *Store {
	s := &Store{
		db:        db,
		logger:    logging.NewNullLogger(),
		checksums: checksum.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.executor == nil {
		s.executor = retry.NewDefaultExecutor(s.logger)
	}
	return s
}

func doWithRetry[T any](ctx context.Context, s *Store, op func(ctx context.Context) (T, error)) (T, error) {
	return retry.Do(ctx, s.executor, op)
}

const publishSQL = `
WITH previous AS (
    SELECT normalized_checksum
      FROM ironpage_schema_source
     WHERE name = $1 AND version_major = $2::text::numeric AND version_minor = $3::text::numeric
), written AS (
    INSERT INTO ironpage_schema_source AS s
        (name, version_major, version_minor, source, checksum, normalized_checksum)
    VALUES ($1, $2::text::numeric, $3::text::numeric, $4, $5, $6)
    ON CONFLICT (name, version_major, version_minor) DO UPDATE
       SET source = EXCLUDED.source,
           checksum = EXCLUDED.checksum,
           normalized_checksum = EXCLUDED.normalized_checksum,
           published_at = now()
     WHERE s.checksum <> EXCLUDED.checksum
    RETURNING 1
)
SELECT (SELECT normalized_checksum FROM previous), EXISTS (SELECT 1 FROM written)`

// Publish stores source as the text of id. Publishing identical bytes
// again is a no-op.
func (s *Store) Publish(ctx context.Context, id names.SchemaIdentifier, source []byte) (*PublishResult, error) {
	if id.IsZero() {
		return nil, errors.New("cannot publish a schema without an identifier")
	}
	raw := s.checksums.CalculateRaw(source)
	normalized := s.checksums.CalculateNormalized(source)

	type outcome struct {
		previous *string
		written  bool
	}
	out, err := doWithRetry(ctx, s, func(ctx context.Context) (outcome, error) {
		var o outcome
		err := s.db.QueryRow(ctx, publishSQL,
			string(id.Name()), id.Major().String(), id.Minor().String(),
			source, raw, normalized,
		).Scan(&o.previous, &o.written)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to publish %s: %w", ironpage.ErrStoreUnavailable, id, err)
	}

	result := &PublishResult{Identifier: id, Checksum: raw}
	switch {
	case out.previous == nil:
		result.Status = Inserted
	case !out.written:
		result.Status = Unchanged
	case *out.previous == normalized:
		result.Status = Reformatted
	default:
		result.Status = Updated
	}
	s.logger.Verbose("Published %s (%s)", id, result.Status)
	return result, nil
}

// URI returns the URI diagnostics use for a stored schema.
func URI(id names.SchemaIdentifier) string {
	return "postgres:ironpage_schema_source/" + id.String()
}

// Open returns the stored source of id, or an error wrapping
// loader.ErrNotFound.
func (s *Store) Open(ctx context.Context, id names.SchemaIdentifier) (string, io.ReadCloser, error) {
	source, err := doWithRetry(ctx, s, func(ctx context.Context) ([]byte, error) {
		var source []byte
		err := s.db.QueryRow(ctx, `
SELECT source FROM ironpage_schema_source
 WHERE name = $1 AND version_major = $2::text::numeric AND version_minor = $3::text::numeric`,
			string(id.Name()), id.Major().String(), id.Minor().String(),
		).Scan(&source)
		return source, err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, fmt.Errorf("%w: %s", loader.ErrNotFound, id)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to read %s: %w", ironpage.ErrStoreUnavailable, id, err)
	}
	return URI(id), io.NopCloser(bytes.NewReader(source)), nil
}

// List returns the identifiers of every stored schema, sorted.
func (s *Store) List(ctx context.Context) ([]names.SchemaIdentifier, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]names.SchemaIdentifier, len(entries))
	for i, e := range entries {
		ids[i] = e.Identifier
	}
	return ids, nil
}

// Entries returns every stored schema, ordered by name then version.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := doWithRetry(ctx, s, func(ctx context.Context) ([]Entry, error) {
		rows, err := s.db.Query(ctx, `
SELECT name, version_major::text, version_minor::text, checksum, normalized_checksum, published_at
  FROM ironpage_schema_source
 ORDER BY name, version_major, version_minor`)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, scanEntry)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list schemas: %w", ironpage.ErrStoreUnavailable, err)
	}
	return entries, nil
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var (
		e            Entry
		name         string
		major, minor string
	)
	if err := row.Scan(&name, &major, &minor, &e.Checksum, &e.NormalizedChecksum, &e.PublishedAt); err != nil {
		return Entry{}, err
	}
	id, err := names.ParseSchemaIdentifier(name + ":" + major + ":" + minor)
	if err != nil {
		return Entry{}, fmt.Errorf("stored schema %s:%s:%s is invalid: %w", name, major, minor, err)
	}
	e.Identifier = id
	return e, nil
}

// Delete removes a stored schema. It reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id names.SchemaIdentifier) (bool, error) {
	tag, err := doWithRetry(ctx, s, func(ctx context.Context) (pgconn.CommandTag, error) {
		return s.db.Exec(ctx, `
DELETE FROM ironpage_schema_source
 WHERE name = $1 AND version_major = $2::text::numeric AND version_minor = $3::text::numeric`,
			string(id.Name()), id.Major().String(), id.Minor().String())
	})
	if err != nil {
		return false, fmt.Errorf("%w: failed to delete %s: %w", ironpage.ErrStoreUnavailable, id, err)
	}
	return tag.RowsAffected() > 0, nil
}
