package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: Category views filter on one flag and order by title.
	`CREATE INDEX IF NOT EXISTS idx_video_games_title ON video_games(title)`,
	`CREATE INDEX IF NOT EXISTS idx_video_games_backlog ON video_games(is_backlog) WHERE is_backlog = 1`,
	`CREATE INDEX IF NOT EXISTS idx_video_games_collection ON video_games(is_collection) WHERE is_collection = 1`,
	`CREATE INDEX IF NOT EXISTS idx_video_games_completion ON video_games(is_completion) WHERE is_completion = 1`,
	`CREATE INDEX IF NOT EXISTS idx_video_games_wishlist ON video_games(is_wishlist) WHERE is_wishlist = 1`,
}

// Migrate ensures the schema exists and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
