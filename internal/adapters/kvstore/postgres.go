package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore backs the flat mapping with a single key/value table.
// ReplaceAll runs inside one transaction so a failure anywhere rolls the
// store back to the previous snapshot.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the backing table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS rota_kv (
            key   TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM rota_kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("kv get: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	query := `
        INSERT INTO rota_kv (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rota_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) Snapshot(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM rota_kv`)
	if err != nil {
		return nil, fmt.Errorf("kv snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("kv snapshot scan: %w", err)
		}
		snapshot[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv snapshot rows: %w", err)
	}
	return snapshot, nil
}

func (s *PostgresStore) ReplaceAll(ctx context.Context, data map[string]string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kv replace begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM rota_kv`); err != nil {
		return fmt.Errorf("kv replace clear: %w", err)
	}

	for k, v := range data {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rota_kv (key, value) VALUES ($1, $2)`, k, v); err != nil {
			return fmt.Errorf("kv replace insert %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kv replace commit: %w", err)
	}
	return nil
}
