// Package sqlite provides a SQLite-backed seen marker store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tessro/reel/internal/registry"
	"github.com/tessro/reel/internal/registry/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists seen markers in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path, creating the schema if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns every stored marker ordered by author.
func (s *Store) Load(ctx context.Context) ([]registry.Marker, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT author_id, seen, seen_at FROM seen_markers ORDER BY author_id`)
	if err != nil {
		return nil, fmt.Errorf("query seen markers: %w", err)
	}
	defer rows.Close()

	var markers []registry.Marker
	for rows.Next() {
		var (
			m      registry.Marker
			seen   int
			seenAt int64
		)
		if err := rows.Scan(&m.AuthorID, &seen, &seenAt); err != nil {
			return nil, fmt.Errorf("scan seen marker: %w", err)
		}
		m.Seen = seen != 0
		m.SeenAt = fromMillis(seenAt)
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen markers: %w", err)
	}
	return markers, nil
}

// Save upserts one marker.
func (s *Store) Save(ctx context.Context, m registry.Marker) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	authorID := strings.TrimSpace(m.AuthorID)
	if authorID == "" {
		return fmt.Errorf("author id is required")
	}
	seen := 0
	if m.Seen {
		seen = 1
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO seen_markers (author_id, seen, seen_at) VALUES (?, ?, ?)
		 ON CONFLICT(author_id) DO UPDATE SET seen = excluded.seen, seen_at = excluded.seen_at`,
		authorID, seen, toMillis(m.SeenAt),
	)
	if err != nil {
		return fmt.Errorf("save seen marker: %w", err)
	}
	return nil
}

// Clear deletes every marker.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM seen_markers`); err != nil {
		return fmt.Errorf("clear seen markers: %w", err)
	}
	return nil
}
