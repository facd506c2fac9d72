package model

// AuditEventType enumerates the state transitions the audit feed records.
type AuditEventType string

const (
	EventCreated           AuditEventType = "created"
	EventCancelled         AuditEventType = "cancelled"
	EventReversalSucceeded AuditEventType = "reversal_succeeded"
	EventReversalFailed    AuditEventType = "reversal_failed"
	EventReversalAbandoned AuditEventType = "reversal_abandoned"
)

// AuditEvent is one append-only record in the audit feed. Events for the
// same action id are ordered by ID; no ordering holds across actions.
type AuditEvent struct {
	ID        int64          `db:"id"` // Primary Key, Auto-increment
	EventType AuditEventType `db:"event_type"`
	ActionID  int64          `db:"action_id"`
	GuildID   string         `db:"guild_id"`
	UserID    string         `db:"user_id"`
	ActorID   string         `db:"actor_id"`
	Timestamp int64          `db:"timestamp"`
	Detail    string         `db:"detail"`
}
