package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dialect selects the SQL flavour used by SQLStore.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type sqlQueries struct {
	create string
	get    string
	upsert string
	delete string
}

var dialectQueries = map[Dialect]sqlQueries{
	Postgres: {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
			store_key   TEXT PRIMARY KEY,
			store_value TEXT NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`,
		get: `SELECT store_value FROM kv_store WHERE store_key = $1`,
		upsert: `INSERT INTO kv_store (store_key, store_value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (store_key) DO UPDATE SET
				store_value = EXCLUDED.store_value,
				updated_at  = EXCLUDED.updated_at`,
		delete: `DELETE FROM kv_store WHERE store_key = $1`,
	},
	SQLite: {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
			store_key   TEXT PRIMARY KEY,
			store_value TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		get: `SELECT store_value FROM kv_store WHERE store_key = ?`,
		upsert: `INSERT INTO kv_store (store_key, store_value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(store_key) DO UPDATE SET
				store_value = excluded.store_value,
				updated_at  = excluded.updated_at`,
		delete: `DELETE FROM kv_store WHERE store_key = ?`,
	},
}

// SQLStore keeps keys as rows of a single kv_store table.
type SQLStore struct {
	db      *sql.DB
	queries sqlQueries
}

func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	queries, ok := dialectQueries[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	return &SQLStore{db: db, queries: queries}, nil
}

// Migrate creates the kv_store table when it does not exist yet.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.queries.create); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.queries.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set stores the value as text so that lib/pq does not encode it as bytea.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.queries.upsert, key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes keys one statement at a time; there is no transaction around the batch.
func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, s.queries.delete, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
