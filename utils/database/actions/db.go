package actions

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the action database and ensures the table and indexes exist.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to action database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS actions (
	    id INTEGER PRIMARY KEY AUTOINCREMENT,
	    kind TEXT NOT NULL,
	    guild_id TEXT NOT NULL,
	    user_id TEXT NOT NULL,
	    actor_id TEXT NOT NULL,
	    reason TEXT DEFAULT '',
	    role_id TEXT DEFAULT '',
	    state TEXT NOT NULL DEFAULT 'active',
	    created_at INTEGER NOT NULL,
	    expires_at INTEGER NOT NULL,
	    last_attempt_at INTEGER NOT NULL DEFAULT 0,
	    attempt_count INTEGER NOT NULL DEFAULT 0
	);`
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create actions table: %w", err)
	}

	// The scheduler's due query walks this index.
	if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_actions_state_expires
	    ON actions (state, expires_at)`); err != nil {
		return nil, fmt.Errorf("failed to create state/expiry index: %w", err)
	}

	// At most one active action per (guild, user, kind).
	if _, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_actions_active_unique
	    ON actions (guild_id, user_id, kind) WHERE state = 'active'`); err != nil {
		return nil, fmt.Errorf("failed to create active uniqueness index: %w", err)
	}

	return db, nil
}
