package migrations

import (
	"context"
	"fmt"
	"strings"

	"controller-sizer/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded run schema in lexical order.
// Every migration is idempotent.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	names, contents, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for i, sql := range contents {
		if strings.TrimSpace(sql) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", names[i], err)
		}
	}
	return nil
}
