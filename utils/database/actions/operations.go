package actions

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moderation-bot/model"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrConflict is returned when an active action already exists for the
	// same (guild, user, kind) triple.
	ErrConflict = errors.New("an active action already exists for this user and kind")
	// ErrNotFound is returned when no action exists with the given id.
	ErrNotFound = errors.New("action not found")
	// ErrAlreadyTerminal is returned when a state transition loses the
	// compare-and-swap because the action already left the active state.
	ErrAlreadyTerminal = errors.New("action is already in a terminal state")
)

// Create inserts a new active action and returns it with its assigned id.
// If supersede is set and an active action exists for the same triple, that
// record is cancelled and the new one inserted in a single transaction; the
// cancelled record's id is returned as supersededID. Without supersede a
// duplicate active triple fails with ErrConflict.
func Create(db *sqlx.DB, a model.Action, supersede bool) (model.Action, int64, error) {
	tx, err := db.Beginx()
	if err != nil {
		return model.Action{}, 0, fmt.Errorf("failed to begin create transaction: %w", err)
	}
	defer tx.Rollback()

	var supersededID int64
	if supersede {
		var prior model.Action
		err = tx.Get(&prior, `SELECT * FROM actions WHERE guild_id = ? AND user_id = ? AND kind = ? AND state = 'active'`,
			a.GuildID, a.UserID, a.Kind)
		switch {
		case err == nil:
			res, uerr := tx.Exec(`UPDATE actions SET state = 'cancelled' WHERE id = ? AND state = 'active'`, prior.ID)
			if uerr != nil {
				return model.Action{}, 0, fmt.Errorf("failed to cancel superseded action %d: %w", prior.ID, uerr)
			}
			if n, _ := res.RowsAffected(); n == 1 {
				supersededID = prior.ID
			}
		case errors.Is(err, sql.ErrNoRows):
			// nothing to supersede
		default:
			return model.Action{}, 0, fmt.Errorf("failed to look up action to supersede: %w", err)
		}
	}

	a.State = model.StateActive
	res, err := tx.NamedExec(`INSERT INTO actions (kind, guild_id, user_id, actor_id, reason, role_id, state, created_at, expires_at, last_attempt_at, attempt_count)
	          VALUES (:kind, :guild_id, :user_id, :actor_id, :reason, :role_id, :state, :created_at, :expires_at, :last_attempt_at, :attempt_count)`, a)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Action{}, 0, ErrConflict
		}
		return model.Action{}, 0, fmt.Errorf("failed to insert action record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Action{}, 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Action{}, 0, fmt.Errorf("failed to commit create transaction: %w", err)
	}

	a.ID = id
	return a, supersededID, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// GetByID retrieves a single action by its primary key.
func GetByID(db *sqlx.DB, id int64) (*model.Action, error) {
	var a model.Action
	err := db.Get(&a, "SELECT * FROM actions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action by id %d: %w", id, err)
	}
	return &a, nil
}

// GetActiveByTriple retrieves the active action for a (guild, user, kind)
// triple, or ErrNotFound if none is active.
func GetActiveByTriple(db *sqlx.DB, guildID, userID string, kind model.ActionKind) (*model.Action, error) {
	var a model.Action
	err := db.Get(&a, `SELECT * FROM actions WHERE guild_id = ? AND user_id = ? AND kind = ? AND state = 'active'`,
		guildID, userID, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active action for user %s in guild %s: %w", userID, guildID, err)
	}
	return &a, nil
}

// transition performs a guarded state change. The WHERE state = 'active'
// clause is the compare-and-swap: under concurrent scheduler instances only
// one mutation commits, the rest resolve to ErrAlreadyTerminal.
func transition(db *sqlx.DB, id int64, query string, args ...interface{}) error {
	res, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update action %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for action %d: %w", id, err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	if err := db.Get(&exists, "SELECT COUNT(*) FROM actions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to check existence of action %d: %w", id, err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrAlreadyTerminal
}

// MarkReversed atomically moves an active action to the reversed state,
// counting the successful attempt.
func MarkReversed(db *sqlx.DB, id int64, at time.Time) error {
	return transition(db, id,
		`UPDATE actions SET state = 'reversed', last_attempt_at = ?, attempt_count = attempt_count + 1
		 WHERE id = ? AND state = 'active'`, at.Unix(), id)
}

// MarkReversalFailed atomically moves an active action to the
// reversal_failed state, counting the failed attempt.
func MarkReversalFailed(db *sqlx.DB, id int64, at time.Time) error {
	return transition(db, id,
		`UPDATE actions SET state = 'reversal_failed', last_attempt_at = ?, attempt_count = attempt_count + 1
		 WHERE id = ? AND state = 'active'`, at.Unix(), id)
}

// RecordAttempt bumps the retry bookkeeping of an action that stays active
// after a transient reversal failure.
func RecordAttempt(db *sqlx.DB, id int64, at time.Time) error {
	return transition(db, id,
		`UPDATE actions SET last_attempt_at = ?, attempt_count = attempt_count + 1
		 WHERE id = ? AND state = 'active'`, at.Unix(), id)
}

// Cancel atomically moves an active action to the cancelled state. Cancelled
// actions are never picked up by the scheduler.
func Cancel(db *sqlx.DB, id int64) error {
	return transition(db, id,
		`UPDATE actions SET state = 'cancelled' WHERE id = ? AND state = 'active'`, id)
}

// DueActive retrieves active actions whose expiry has passed, earliest due
// first, capped at limit to bound the scheduler batch.
func DueActive(db *sqlx.DB, before time.Time, limit int) ([]model.Action, error) {
	var due []model.Action
	err := db.Select(&due, `SELECT * FROM actions WHERE state = 'active' AND expires_at <= ?
		 ORDER BY expires_at ASC LIMIT ?`, before.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due actions: %w", err)
	}
	return due, nil
}

// ListByUser retrieves all actions for a user in a guild, newest first.
func ListByUser(db *sqlx.DB, guildID, userID string) ([]model.Action, error) {
	var records []model.Action
	err := db.Select(&records, `SELECT * FROM actions WHERE guild_id = ? AND user_id = ? ORDER BY created_at DESC, id DESC`,
		guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actions for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// ListByGuild retrieves all actions for a guild, newest first.
func ListByGuild(db *sqlx.DB, guildID string) ([]model.Action, error) {
	var records []model.Action
	err := db.Select(&records, "SELECT * FROM actions WHERE guild_id = ? ORDER BY created_at DESC, id DESC", guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actions for guild %s: %w", guildID, err)
	}
	return records, nil
}

// ActorStats retrieves the number of actions issued per moderator in a guild
// since the given time, for the periodic stats report.
func ActorStats(db *sqlx.DB, guildID string, since time.Time) (map[string]int, error) {
	rows, err := db.Query(`SELECT actor_id, COUNT(*) as count FROM actions WHERE guild_id = ? AND created_at >= ? GROUP BY actor_id`,
		guildID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get actor stats for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var actorID string
		var count int
		if err := rows.Scan(&actorID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan actor stats row: %w", err)
		}
		stats[actorID] = count
	}
	return stats, rows.Err()
}

// CountByState retrieves the number of actions per state for a guild since
// the given time.
func CountByState(db *sqlx.DB, guildID string, since time.Time) (map[model.ActionState]int, error) {
	rows, err := db.Query(`SELECT state, COUNT(*) as count FROM actions WHERE guild_id = ? AND created_at >= ? GROUP BY state`,
		guildID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get state counts for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	counts := make(map[model.ActionState]int)
	for rows.Next() {
		var state model.ActionState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan state count row: %w", err)
		}
		counts[state] = count
	}
	return counts, rows.Err()
}

// ListByActor retrieves all actions issued by a moderator in a guild, newest first.
func ListByActor(db *sqlx.DB, guildID, actorID string) ([]model.Action, error) {
	var records []model.Action
	err := db.Select(&records, `SELECT * FROM actions WHERE guild_id = ? AND actor_id = ? ORDER BY created_at DESC, id DESC`,
		guildID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actions for actor %s in guild %s: %w", actorID, guildID, err)
	}
	return records, nil
}
