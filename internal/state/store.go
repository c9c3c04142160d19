// Package state persists build records and per-page content fingerprints
// in SQLite. Fingerprints let incremental builds skip pages whose source
// has not changed; build records feed the admin endpoint.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed state store. Safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// BuildRecord describes one completed build.
type BuildRecord struct {
	ID           string
	StartedAt    time.Time
	Duration     time.Duration
	PagesBuilt   int
	PagesSkipped int
	Outcome      string
}

// Open opens (or creates) the store. Use ":memory:" for an ephemeral
// database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_built INTEGER NOT NULL,
		pages_skipped INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	CREATE TABLE IF NOT EXISTS fingerprints (
		slug TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// RecordBuild appends a completed build.
func (s *Store) RecordBuild(ctx context.Context, rec BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, started_at, duration_ms, pages_built, pages_skipped, outcome) VALUES (?, ?, ?, ?, ?, ?)",
		rec.ID, rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(), rec.PagesBuilt, rec.PagesSkipped, rec.Outcome,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// RecentBuilds returns up to limit builds, newest first.
func (s *Store) RecentBuilds(ctx context.Context, limit int) ([]BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, duration_ms, pages_built, pages_skipped, outcome FROM builds ORDER BY started_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var started, durationMS int64
		if err := rows.Scan(&rec.ID, &started, &durationMS, &rec.PagesBuilt, &rec.PagesSkipped, &rec.Outcome); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Fingerprint returns the stored fingerprint for a slug, or "" when none
// is recorded.
func (s *Store) Fingerprint(ctx context.Context, slug string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fp string
	err := s.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM fingerprints WHERE slug = ?", slug).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query fingerprint: %w", err)
	}
	return fp, nil
}

// SetFingerprint upserts the fingerprint for a slug.
func (s *Store) SetFingerprint(ctx context.Context, slug, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fingerprints (slug, fingerprint, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = excluded.updated_at`,
		slug, fingerprint, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert fingerprint: %w", err)
	}
	return nil
}

// SiteSignature returns the chrome signature of the last recorded build,
// or "" when none is recorded. The signature covers the inputs that shape
// every rendered page (site metadata, route tree, live page set), so
// incremental builds can tell when skipping a page would leave stale nav
// or pagination.
func (s *Store) SiteSignature(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = 'site_signature'").Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query site signature: %w", err)
	}
	return v, nil
}

// SetSiteSignature upserts the chrome signature for the next incremental
// build to compare against.
func (s *Store) SetSiteSignature(ctx context.Context, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('site_signature', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		signature,
	)
	if err != nil {
		return fmt.Errorf("upsert site signature: %w", err)
	}
	return nil
}

// Fingerprints returns all stored fingerprints keyed by slug.
func (s *Store) Fingerprints(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT slug, fingerprint FROM fingerprints")
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var slug, fp string
		if err := rows.Scan(&slug, &fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		out[slug] = fp
	}
	return out, rows.Err()
}

// PruneFingerprints removes fingerprints for slugs no longer in the route
// tree, keeping the table aligned with the authored navigation.
func (s *Store) PruneFingerprints(ctx context.Context, keep map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT slug FROM fingerprints")
	if err != nil {
		return fmt.Errorf("query fingerprint slugs: %w", err)
	}
	var stale []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan slug: %w", err)
		}
		if _, ok := keep[slug]; !ok {
			stale = append(stale, slug)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, slug := range stale {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM fingerprints WHERE slug = ?", slug); err != nil {
			return fmt.Errorf("delete stale fingerprint: %w", err)
		}
	}
	return nil
}
