package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS formulas (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_formulas_name ON formulas(name)`,
	`CREATE INDEX IF NOT EXISTS idx_formulas_position ON formulas(position)`,

	`CREATE TABLE IF NOT EXISTS preferences (
		scope        TEXT NOT NULL,
		indicator    TEXT NOT NULL,
		formula_id   TEXT NOT NULL,
		formula_name TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		PRIMARY KEY (scope, indicator)
	)`,

	// Add unit to formulas (carried from the platform export when present)
	`ALTER TABLE formulas ADD COLUMN unit TEXT NOT NULL DEFAULT ''`,
}
