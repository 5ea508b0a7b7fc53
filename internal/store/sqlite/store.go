// Package sqlite is the single-file vendor-config store backend, the
// default for single-host deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"numgate/internal/config"
	"numgate/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS vendor_configs (
    name       TEXT PRIMARY KEY,
    doc        TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

type sqliteStore struct {
	db *sql.DB
}

func init() {
	store.Register("sqlite", New)
}

func New(ctx context.Context, cfg store.Config) (store.Store, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() { _ = s.db.Close() }

func (s *sqliteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create vendor_configs: %w", err)
	}
	return nil
}

func (s *sqliteStore) Put(ctx context.Context, cfg *config.VendorConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode vendor config: %w", err)
	}

	// Timestamps are stored as RFC3339Nano strings: SQLite has no real
	// timestamp type and strings round-trip reliably.
	_, err = s.db.ExecContext(ctx, `
INSERT INTO vendor_configs (name, doc, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		cfg.Name, string(doc), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put vendor config %q: %w", cfg.Name, err)
	}
	return nil
}

func (s *sqliteStore) Get(ctx context.Context, name string) (*config.VendorConfig, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM vendor_configs WHERE name = ?`, name).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("vendor %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor config %q: %w", name, err)
	}
	return config.Parse([]byte(doc))
}

func (s *sqliteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM vendor_configs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list vendor configs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *sqliteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM vendor_configs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete vendor config %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("vendor %q: %w", name, store.ErrNotFound)
	}
	return nil
}
