package audit

import (
	"fmt"

	"moderation-bot/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init ensures the append-only audit_events table exists. The autoincrement
// id is the feed order; events for one action are read back in emit order.
func Init(db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS audit_events (
	    id INTEGER PRIMARY KEY AUTOINCREMENT,
	    event_type TEXT NOT NULL,
	    action_id INTEGER NOT NULL,
	    guild_id TEXT NOT NULL,
	    user_id TEXT NOT NULL,
	    actor_id TEXT NOT NULL,
	    timestamp INTEGER NOT NULL,
	    detail TEXT DEFAULT ''
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create audit_events table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_audit_events_action ON audit_events (action_id, id)`); err != nil {
		return fmt.Errorf("failed to create audit event index: %w", err)
	}
	return nil
}

// Append inserts a new audit event and returns its feed id.
func Append(db *sqlx.DB, ev model.AuditEvent) (int64, error) {
	res, err := db.NamedExec(`INSERT INTO audit_events (event_type, action_id, guild_id, user_id, actor_id, timestamp, detail)
	          VALUES (:event_type, :action_id, :guild_id, :user_id, :actor_id, :timestamp, :detail)`, ev)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// ListByAction retrieves the events recorded for one action, in emit order.
func ListByAction(db *sqlx.DB, actionID int64) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := db.Select(&events, "SELECT * FROM audit_events WHERE action_id = ? ORDER BY id ASC", actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit events for action %d: %w", actionID, err)
	}
	return events, nil
}
