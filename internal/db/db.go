package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a SQLite connection holding visitor preferences.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the SQLite database at path and
// ensures the schema exists.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			scope      TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (scope, key)
		)`)
	return err
}

// GetPreference returns the stored value for scope/key; ok is false when absent.
func (d *DB) GetPreference(ctx context.Context, scope, key string) (string, bool, error) {
	var value string
	err := d.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE scope = ? AND key = ?",
		scope, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query preference %s/%s: %w", scope, key, err)
	}
	return value, true, nil
}

// SetPreference upserts the value for scope/key.
func (d *DB) SetPreference(ctx context.Context, scope, key, value string) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO preferences (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		scope, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert preference %s/%s: %w", scope, key, err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.PingContext(ctx)
}
