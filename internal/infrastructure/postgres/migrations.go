package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed migrations/schema.sql
var schemaSQL string

const uniqueCodeIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS products_product_code_key ON products (product_code)`

// Migrate ensures the required tables exist. With uniqueCodes set it also
// creates a unique index on product_code, which makes the store reject a
// duplicate that slipped past the client-side check.
func (db *Database) Migrate(ctx context.Context, uniqueCodes bool) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	statements := strings.Split(schemaSQL, ";")
	if uniqueCodes {
		statements = append(statements, uniqueCodeIndexSQL)
	}
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
