package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"scribbles/internal/config"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// SQLStore keeps keys in a single kv_entries table. The same queries run on
// PostgreSQL and SQLite; placeholders are rebound per driver.
type SQLStore struct {
	db     *sqlx.DB
	prefix string
}

// ConnectPostgres opens the PostgreSQL database described by cfg.
func ConnectPostgres(cfg *config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// ConnectSQLite opens (creating if needed) the SQLite file at path.
func ConnectSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewSQLStore ensures the table exists and wraps db.
func NewSQLStore(ctx context.Context, db *sqlx.DB, prefix string) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("create kv_entries: %w", err)
	}
	return &SQLStore{db: db, prefix: prefix}, nil
}

func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	k, err := prefixed(s.prefix, key)
	if err != nil {
		return nil, false, err
	}

	var value string
	query := s.db.Rebind(`SELECT value FROM kv_entries WHERE key = ?`)
	err = s.db.GetContext(ctx, &value, query, k)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", k, err)
	}
	return []byte(value), true, nil
}

func (s *SQLStore) Save(ctx context.Context, key string, data []byte) error {
	k, err := prefixed(s.prefix, key)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := s.db.ExecContext(ctx, query, k, string(data)); err != nil {
		return fmt.Errorf("upsert %s: %w", k, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	k, err := prefixed(s.prefix, key)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`DELETE FROM kv_entries WHERE key = ?`)
	if _, err := s.db.ExecContext(ctx, query, k); err != nil {
		return fmt.Errorf("delete %s: %w", k, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
