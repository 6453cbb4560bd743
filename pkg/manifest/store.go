// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest keeps a SQLite record of the files fetched from the
// transfer server and exports it as YAML or JSON.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/geodataset/pkg/types"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the manifest database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the manifest database at path, creating its
// parent directory and schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			local_path    TEXT PRIMARY KEY,
			accession     TEXT NOT NULL DEFAULT '',
			remote_path   TEXT NOT NULL,
			size          INTEGER NOT NULL DEFAULT 0,
			downloaded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_accession ON downloads(accession)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores d, replacing any earlier entry for the same local path.
func (s *Store) Record(ctx context.Context, d types.Download) error {
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO downloads (local_path, accession, remote_path, size, downloaded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(local_path) DO UPDATE SET
			accession = excluded.accession,
			remote_path = excluded.remote_path,
			size = excluded.size,
			downloaded_at = excluded.downloaded_at`,
		d.LocalPath, d.Accession, d.RemotePath, d.Size, d.DownloadedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("recording %s: %w", d.LocalPath, err)
	}
	return nil
}

// List returns the recorded downloads, oldest first. A non-empty accession
// restricts the result to that record.
func (s *Store) List(ctx context.Context, accession string) ([]types.Download, error) {
	query := `SELECT local_path, accession, remote_path, size, downloaded_at FROM downloads`
	var args []any
	if accession != "" {
		query += ` WHERE accession = ?`
		args = append(args, accession)
	}
	query += ` ORDER BY downloaded_at, local_path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying downloads: %w", err)
	}
	defer rows.Close()

	downloads := []types.Download{}
	for rows.Next() {
		var d types.Download
		var at string
		if err := rows.Scan(&d.LocalPath, &d.Accession, &d.RemotePath, &d.Size, &at); err != nil {
			return nil, fmt.Errorf("scanning download: %w", err)
		}
		d.DownloadedAt, err = time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", at, err)
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
