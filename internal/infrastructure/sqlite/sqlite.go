// Package sqlite binds the product document store and provider accounts to a
// single SQLite file, for local runs without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS products (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	product_code TEXT NOT NULL,
	name TEXT NOT NULL,
	price REAL NOT NULL CHECK (price >= 0),
	owner TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS products_product_code_idx ON products (product_code);
`

const uniqueCodeIndex = `CREATE UNIQUE INDEX IF NOT EXISTS products_product_code_key ON products (product_code)`

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, uniqueCodes bool) (*sql.DB, error) {
	if path == "" {
		path = "catalog.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps SQLITE_BUSY out of concurrent handlers
	db.SetMaxOpenConns(1)

	statements := strings.Split(schema, ";")
	if uniqueCodes {
		statements = append(statements, uniqueCodeIndex)
	}
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
