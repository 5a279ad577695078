package database

import "database/sql"

// Migrate creates the ledger tables. Statements are idempotent so the server
// can run them unconditionally at startup.
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password      TEXT NOT NULL,
			coins         BIGINT NOT NULL DEFAULT 0 CHECK (coins >= 0),
			bank          BIGINT NOT NULL DEFAULT 0 CHECK (bank >= 0),
			bank_capacity BIGINT NOT NULL DEFAULT 10000,
			level         INT NOT NULL DEFAULT 1,
			xp            BIGINT NOT NULL DEFAULT 0,
			inventory     JSONB NOT NULL DEFAULT '[]',
			game_stats    JSONB NOT NULL DEFAULT '{}',
			cooldowns     JSONB NOT NULL DEFAULT '{}',
			banned        BOOLEAN NOT NULL DEFAULT FALSE,
			ban_reason    TEXT NOT NULL DEFAULT '',
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
			version       INT NOT NULL DEFAULT 1,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_active   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			price         BIGINT NOT NULL,
			current_price BIGINT NOT NULL,
			type          TEXT NOT NULL,
			rarity        TEXT NOT NULL,
			effects       JSONB NOT NULL DEFAULT '{}',
			stock         BIGINT NOT NULL DEFAULT -1
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			username    TEXT NOT NULL,
			type        TEXT NOT NULL,
			amount      BIGINT NOT NULL CHECK (amount >= 0),
			target_user TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_username ON transactions (username, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL,
			message    TEXT NOT NULL,
			type       TEXT NOT NULL,
			read       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_username ON notifications (username, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
