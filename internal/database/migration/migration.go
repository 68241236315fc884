package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_phones",
		SQL: `CREATE TABLE IF NOT EXISTS phones (
  id         BIGSERIAL PRIMARY KEY,
  phone_name TEXT      NOT NULL,
  brand_id   INTEGER   NOT NULL DEFAULT 0
);`,
	},
	{
		Name: "create_unique_index_phones_phone_name",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_phones_phone_name ON phones (phone_name);`,
	},
	{
		Name: "create_index_phones_brand_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_phones_brand_id ON phones (brand_id);`,
	},
}

// sentinelQuery reports whether the last schema object exists. Steps commit together,
// so its presence implies every earlier step, including the name uniqueness index.
const sentinelQuery = "SELECT to_regclass('public.idx_phones_brand_id') IS NOT NULL"

// EnsureMigrated creates the phones schema unless it is already complete.
// All steps run in one transaction; a failed step leaves nothing behind and the next start retries.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *log.Logger, dbHost string) error {
	start := time.Now()
	l := logger.With("db_host", dbHost)

	l.Info("db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery).Scan(&exists); err != nil {
		l.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		l.Info("db_migration_skip",
			"status", "success",
			"reason", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	l.Info("db_migration_start", "status", "in_progress")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			l.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		l.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	if err := tx.Commit(); err != nil {
		l.Error("db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("commit migration: %w", err)
	}

	l.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
