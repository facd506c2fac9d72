package model

import "time"

// ActionKind identifies the moderation operation an action applies and,
// at expiry, how it is reversed.
type ActionKind string

const (
	KindTempBan   ActionKind = "tempban"
	KindTimedMute ActionKind = "timed_mute"
	KindTimedRole ActionKind = "timed_role"
	KindTimedWarn ActionKind = "timed_warning"
)

// ActionState is the lifecycle state of an action record.
type ActionState string

const (
	StateActive         ActionState = "active"
	StateReversed       ActionState = "reversed"
	StateReversalFailed ActionState = "reversal_failed"
	StateCancelled      ActionState = "cancelled"
)

// Action represents a single timed moderation action in the database.
// The database table is named 'actions'. Timestamps are unix seconds.
type Action struct {
	ID            int64       `db:"id"` // Primary Key, Auto-increment
	Kind          ActionKind  `db:"kind"`
	GuildID       string      `db:"guild_id"`
	UserID        string      `db:"user_id"`
	ActorID       string      `db:"actor_id"`
	Reason        string      `db:"reason"`
	RoleID        string      `db:"role_id"` // only set for timed_role actions
	State         ActionState `db:"state"`
	CreatedAt     int64       `db:"created_at"`
	ExpiresAt     int64       `db:"expires_at"`
	LastAttemptAt int64       `db:"last_attempt_at"` // 0 until the first reversal attempt
	AttemptCount  int         `db:"attempt_count"`
}

// Terminal reports whether the action can no longer be advanced by the scheduler.
func (a *Action) Terminal() bool {
	return a.State != StateActive
}

// ExpiresAtTime returns the expiry as a time.Time.
func (a *Action) ExpiresAtTime() time.Time {
	return time.Unix(a.ExpiresAt, 0)
}

// KnownKind reports whether k is one of the supported action kinds.
func KnownKind(k ActionKind) bool {
	switch k {
	case KindTempBan, KindTimedMute, KindTimedRole, KindTimedWarn:
		return true
	}
	return false
}
