package migrations

import (
	"context"
	"fmt"

	"robo-advisor-lab/internal/storage/postgres"
)

// RunPostgresMigrations applies all embedded SQL files in lexical order.
// Every migration uses IF NOT EXISTS, so re-running is safe.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := readMigrations(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, f := range files {
		if _, err := pool.Exec(ctx, f.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.name, err)
		}
	}
	return nil
}
