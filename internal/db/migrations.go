package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS results (
		record_id   TEXT PRIMARY KEY,
		filename    TEXT NOT NULL,
		strategy    TEXT NOT NULL,
		body        JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_results_filename ON results(filename);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
