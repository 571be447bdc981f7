// Package store persists simulation sweeps in a SQLite database.
//
// Each pack is kept as a JSON document under a string key. Keys are usually
// built with NewKey so that concurrent runs never collide.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS packs (
	key        TEXT PRIMARY KEY,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	revision   TEXT,
	data       BLOB NOT NULL
);
`

// Store is a SQLite backed pack store.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewKey returns prefix followed by a random UUID.
func NewKey(prefix string) string {
	return prefix + uuid.New().String()
}

// Put stores p under key, replacing any previous pack.
func (s *Store) Put(ctx context.Context, key string, p *Pack) error {
	if key == "" {
		return ErrInvalidKey
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO packs (key, revision, data) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET revision = excluded.revision, data = excluded.data;
	`, key, p.Metadata.Revision, data)
	return err
}

// Get loads the pack stored under key.
func (s *Store) Get(ctx context.Context, key string) (*Pack, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM packs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}

	p := new(Pack)
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("store: decode %q: %w", key, err)
	}
	return p, nil
}

// List returns the keys starting with prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM packs WHERE substr(key, 1, ?) = ? ORDER BY key`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes the pack stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM packs WHERE key = ?`, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
