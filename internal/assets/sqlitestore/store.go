// Package sqlitestore keeps assets as blobs in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rgbyp-maskeditor/internal/assets"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	key        TEXT PRIMARY KEY,
	area       TEXT NOT NULL,
	subfolder  TEXT NOT NULL,
	filename   TEXT NOT NULL,
	data       BLOB NOT NULL,
	size       INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS assets_area ON assets(area, subfolder);
`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store is a SQLite-backed assets.Store.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ assets.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection, so the pragmas below hold for every query.
	sqlDB.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store, err := New(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open database and creates the schema.
func New(sqlDB *sql.DB) (*Store, error) {
	if _, err := sqlDB.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Upload implements assets.Store.
func (s *Store) Upload(ctx context.Context, ref assets.Ref, data []byte, overwrite bool) (assets.Ref, error) {
	if err := ref.Validate(); err != nil {
		return assets.Ref{}, err
	}
	if data == nil {
		data = []byte{}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return assets.Ref{}, fmt.Errorf("begin upload: %w", err)
	}
	defer tx.Rollback()

	if !overwrite {
		var lookupErr error
		ref.Filename = assets.UniqueName(ref.Filename, func(name string) bool {
			c := ref
			c.Filename = name
			var one int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM assets WHERE key = ?`, c.Key()).Scan(&one)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				lookupErr = err
				return false
			}
			return err == nil
		})
		if lookupErr != nil {
			return assets.Ref{}, fmt.Errorf("check existing asset: %w", lookupErr)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assets (key, area, subfolder, filename, data, size, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   data = excluded.data,
		   size = excluded.size,
		   updated_at = excluded.updated_at`,
		ref.Key(), string(ref.Area), ref.Subfolder, ref.Filename, data, len(data), s.now().UnixMilli(),
	)
	if err != nil {
		return assets.Ref{}, fmt.Errorf("store asset: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return assets.Ref{}, fmt.Errorf("commit upload: %w", err)
	}
	return ref, nil
}

// Fetch implements assets.Store.
func (s *Store) Fetch(ctx context.Context, ref assets.Ref) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM assets WHERE key = ?`, ref.Key()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", assets.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("load asset: %w", err)
	}
	return data, nil
}

// List returns the refs stored in area, ordered by key.
func (s *Store) List(ctx context.Context, area assets.Area) ([]assets.Ref, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT area, subfolder, filename FROM assets WHERE area = ? ORDER BY key`, string(area))
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var refs []assets.Ref
	for rows.Next() {
		var r assets.Ref
		var a string
		if err := rows.Scan(&a, &r.Subfolder, &r.Filename); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		r.Area = assets.Area(a)
		refs = append(refs, r)
	}
	return refs, rows.Err()
}
