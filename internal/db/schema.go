package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS video_games (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    title           TEXT NOT NULL CHECK (length(title) BETWEEN 1 AND 100),
    platform        TEXT NOT NULL CHECK (length(platform) BETWEEN 1 AND 50),
    publisher       TEXT NOT NULL CHECK (length(publisher) BETWEEN 1 AND 50),
    release_date    TEXT NOT NULL,
    completion_date TEXT,
    playtime        INTEGER NOT NULL DEFAULT -1 CHECK (playtime BETWEEN -1 AND 10000),
    price           REAL NOT NULL CHECK (price BETWEEN 0 AND 10000),
    is_backlog      INTEGER NOT NULL DEFAULT 0 CHECK (is_backlog IN (0, 1)),
    is_collection   INTEGER NOT NULL DEFAULT 0 CHECK (is_collection IN (0, 1)),
    is_completion   INTEGER NOT NULL DEFAULT 0 CHECK (is_completion IN (0, 1)),
    is_wishlist     INTEGER NOT NULL DEFAULT 0 CHECK (is_wishlist IN (0, 1)),
    image_path      TEXT,
    CHECK (is_backlog + is_collection + is_completion + is_wishlist >= 1),
    CHECK (completion_date IS NULL OR completion_date >= release_date)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
