// internal/db/seed.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// Seed executes each SQL file in order. It stops at the first failure.
func Seed(ctx context.Context, conn *sql.DB, files ...string) error {
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute %s: %w", file, err)
		}
	}
	return nil
}

// Schema returns the DDL statements Migrate applies.
func Schema() []string {
	return append([]string(nil), schema...)
}
