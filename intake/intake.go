// Package intake is the synchronous entry point the command layer uses to
// create timed actions. It validates the request, applies the remote effect,
// persists the record and emits the creation audit event.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"moderation-bot/audit"
	"moderation-bot/enforcer"
	"moderation-bot/model"
	actions_db "moderation-bot/utils/database/actions"

	"github.com/jmoiron/sqlx"
)

// ValidationError rejects a malformed request before any side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid action request: " + e.Reason
}

// ConflictError reports a duplicate active action for the same
// (guild, user, kind) triple. Applied distinguishes a conflict detected
// before the remote effect (nothing happened) from one detected after it
// (the effect is in place but no record was written).
type ConflictError struct {
	Applied bool
}

func (e *ConflictError) Error() string {
	if e.Applied {
		return "duplicate active action: the remote effect was applied but not recorded"
	}
	return "duplicate active action"
}

// SubmitRequest describes a new timed action.
type SubmitRequest struct {
	Kind      model.ActionKind
	GuildID   string
	UserID    string
	ActorID   string
	Reason    string
	RoleID    string // required for timed_role
	ExpiresAt time.Time
	Supersede bool
}

// Service wires the store, executor registry and audit emitter together.
type Service struct {
	db        *sqlx.DB
	enforcers enforcer.Registry
	emitter   *audit.Emitter
	now       func() time.Time
}

func NewService(db *sqlx.DB, enforcers enforcer.Registry, emitter *audit.Emitter) *Service {
	return &Service{
		db:        db,
		enforcers: enforcers,
		emitter:   emitter,
		now:       time.Now,
	}
}

// Submit validates the request, applies the action remotely, persists it and
// emits a created event. A *ConflictError with Applied set means the remote
// effect is in place without a backing record; that asymmetry is surfaced
// here so the caller can supersede or reconcile, never hidden.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*model.Action, error) {
	now := s.now()
	if err := validate(req, now); err != nil {
		return nil, err
	}

	// Pre-apply duplicate check. A conflict caught here means nothing
	// happened remotely. The unique index remains the authority; this only
	// narrows the window for the post-apply case below.
	if !req.Supersede {
		_, err := actions_db.GetActiveByTriple(s.db, req.GuildID, req.UserID, req.Kind)
		if err == nil {
			return nil, &ConflictError{Applied: false}
		}
		if !errors.Is(err, actions_db.ErrNotFound) {
			return nil, fmt.Errorf("failed to check for duplicate action: %w", err)
		}
	}

	action := model.Action{
		Kind:      req.Kind,
		GuildID:   req.GuildID,
		UserID:    req.UserID,
		ActorID:   req.ActorID,
		Reason:    req.Reason,
		RoleID:    req.RoleID,
		State:     model.StateActive,
		CreatedAt: now.Unix(),
		ExpiresAt: req.ExpiresAt.Unix(),
	}

	enf, err := s.enforcers.Lookup(req.Kind)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if err := enf.Apply(ctx, &action); err != nil && !errors.Is(err, enforcer.ErrAlreadySatisfied) {
		return nil, fmt.Errorf("failed to apply %s for user %s: %w", req.Kind, req.UserID, err)
	}

	created, supersededID, err := actions_db.Create(s.db, action, req.Supersede)
	if errors.Is(err, actions_db.ErrConflict) {
		return nil, &ConflictError{Applied: true}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record %s for user %s: %w", req.Kind, req.UserID, err)
	}

	if supersededID != 0 {
		superseded := created
		superseded.ID = supersededID
		s.emitter.Emit(model.EventCancelled, &superseded, fmt.Sprintf("superseded by action %d", created.ID))
	}
	s.emitter.Emit(model.EventCreated, &created, created.Reason)

	return &created, nil
}

// Cancel is the administrative active → cancelled transition. The remote
// effect is reversed best effort first; the compare-and-swap in the store
// decides a race against the scheduler, and the loser backs off on
// ErrAlreadyTerminal.
func (s *Service) Cancel(ctx context.Context, id int64, actorID string) (*model.Action, error) {
	action, err := actions_db.GetByID(s.db, id)
	if err != nil {
		return nil, err
	}
	if action.Terminal() {
		return nil, actions_db.ErrAlreadyTerminal
	}

	if enf, err := s.enforcers.Lookup(action.Kind); err == nil {
		if rerr := enf.Reverse(ctx, action); rerr != nil && !errors.Is(rerr, enforcer.ErrAlreadySatisfied) {
			log.Printf("Best-effort reversal during cancel of action %d failed: %v", id, rerr)
		}
	}

	if err := actions_db.Cancel(s.db, id); err != nil {
		return nil, err
	}

	action.State = model.StateCancelled
	s.emitter.Emit(model.EventCancelled, action, fmt.Sprintf("cancelled by <@%s>", actorID))
	return action, nil
}

func validate(req SubmitRequest, now time.Time) error {
	if !model.KnownKind(req.Kind) {
		return &ValidationError{Reason: fmt.Sprintf("unknown action kind %q", req.Kind)}
	}
	if req.GuildID == "" || req.UserID == "" || req.ActorID == "" {
		return &ValidationError{Reason: "guild, user and actor ids are required"}
	}
	if req.Kind == model.KindTimedRole && req.RoleID == "" {
		return &ValidationError{Reason: "timed_role actions require a role id"}
	}
	if !req.ExpiresAt.After(now) {
		return &ValidationError{Reason: "expiry must be in the future"}
	}
	return nil
}
