package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/*.sql
var scripts embed.FS

const (
	SchemaScript   = "schema.sql"
	UpdateV1Script = "update-v1.sql"
)

// Apply runs one embedded script inside a transaction. Scripts are written to
// be re-runnable.
func Apply(ctx context.Context, pool *pgxpool.Pool, name string) error {
	body, err := scripts.ReadFile("sql/" + name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return fmt.Errorf("exec %s: %w", name, err)
	}
	return tx.Commit(ctx)
}
