// Package postgres is the shared vendor-config store backend for
// multi-host deployments.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"numgate/internal/config"
	"numgate/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS vendor_configs (
    name       TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type pgStore struct {
	pool *pgxpool.Pool
}

func init() {
	store.Register("postgres", New)
}

func New(ctx context.Context, cfg store.Config) (store.Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &pgStore{pool: pool}, nil
}

func (s *pgStore) Close() { s.pool.Close() }

func (s *pgStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create vendor_configs: %w", err)
	}
	return nil
}

func (s *pgStore) Put(ctx context.Context, cfg *config.VendorConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode vendor config: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO vendor_configs (name, doc, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		cfg.Name, doc)
	if err != nil {
		return fmt.Errorf("put vendor config %q: %w", cfg.Name, err)
	}
	return nil
}

func (s *pgStore) Get(ctx context.Context, name string) (*config.VendorConfig, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM vendor_configs WHERE name = $1`, name).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("vendor %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor config %q: %w", name, err)
	}
	return config.Parse(doc)
}

func (s *pgStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
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

func (s *pgStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM vendor_configs WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete vendor config %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vendor %q: %w", name, store.ErrNotFound)
	}
	return nil
}
