// Package scanner runs the expiry scheduler: the only writer that advances
// actions past the active state. It polls the store for due actions on a
// fixed tick and drives each one through reversal.
package scanner

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

// ExpiryScanner sweeps due actions and reverses them. Multiple instances may
// run concurrently; the store's compare-and-swap guarantees a single state
// transition per action, and duplicate remote calls are tolerated because
// reversals are idempotent.
type ExpiryScanner struct {
	db        *sqlx.DB
	enforcers enforcer.Registry
	emitter   *audit.Emitter
	cfg       model.SchedulerConfig
	now       func() time.Time
}

// New creates an expiry scanner with the given tuning.
func New(db *sqlx.DB, enforcers enforcer.Registry, emitter *audit.Emitter, cfg model.SchedulerConfig) *ExpiryScanner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 30 * time.Second
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.ReverseTimeout <= 0 {
		cfg.ReverseTimeout = 10 * time.Second
	}
	return &ExpiryScanner{
		db:        db,
		enforcers: enforcers,
		emitter:   emitter,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start runs the sweep loop until done is closed.
func (s *ExpiryScanner) Start(done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-done:
			return
		}
	}
}

// Sweep processes one batch of due actions. Failures are isolated per
// action: a bad record never stops the rest of the batch, and nothing is
// surfaced to a caller.
func (s *ExpiryScanner) Sweep() {
	now := s.now()
	due, err := actions_db.DueActive(s.db, now, s.cfg.BatchLimit)
	if err != nil {
		log.Printf("Error getting due actions: %v", err)
		return
	}

	for i := range due {
		s.process(&due[i], now)
	}
}

func (s *ExpiryScanner) process(a *model.Action, now time.Time) {
	enf, err := s.enforcers.Lookup(a.Kind)
	if err != nil {
		// No enforcer means no retry will ever help.
		s.markFailed(a, now, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ReverseTimeout)
	err = enf.Reverse(ctx, a)
	cancel()

	switch {
	case err == nil || errors.Is(err, enforcer.ErrAlreadySatisfied):
		s.markReversed(a, now)
	case errors.Is(err, enforcer.ErrRemoteRejected):
		s.markFailed(a, now, err.Error())
	default:
		// Transient. Leave the action active so the next tick retries,
		// unless the attempt budget is spent.
		if a.AttemptCount+1 > s.cfg.MaxAttempts {
			s.abandon(a, now, err.Error())
			return
		}
		if rerr := actions_db.RecordAttempt(s.db, a.ID, now); rerr != nil && !errors.Is(rerr, actions_db.ErrAlreadyTerminal) {
			log.Printf("Failed to record reversal attempt for action %d: %v", a.ID, rerr)
		}
		log.Printf("Reversal of action %d failed transiently (attempt %d/%d): %v", a.ID, a.AttemptCount+1, s.cfg.MaxAttempts, err)
	}
}

func (s *ExpiryScanner) markReversed(a *model.Action, now time.Time) {
	err := actions_db.MarkReversed(s.db, a.ID, now)
	if errors.Is(err, actions_db.ErrAlreadyTerminal) {
		// Another instance won the compare-and-swap; it owns the audit event.
		return
	}
	if err != nil {
		log.Printf("Failed to mark action %d reversed: %v", a.ID, err)
		return
	}
	log.Printf("Reversed expired %s for user %s (action %d)", a.Kind, a.UserID, a.ID)
	s.emitter.Emit(model.EventReversalSucceeded, a, "")
}

func (s *ExpiryScanner) markFailed(a *model.Action, now time.Time, detail string) {
	err := actions_db.MarkReversalFailed(s.db, a.ID, now)
	if errors.Is(err, actions_db.ErrAlreadyTerminal) {
		return
	}
	if err != nil {
		log.Printf("Failed to mark action %d reversal_failed: %v", a.ID, err)
		return
	}
	log.Printf("Reversal of action %d permanently rejected: %s", a.ID, detail)
	s.emitter.Emit(model.EventReversalFailed, a, detail)
}

func (s *ExpiryScanner) abandon(a *model.Action, now time.Time, detail string) {
	err := actions_db.MarkReversalFailed(s.db, a.ID, now)
	if errors.Is(err, actions_db.ErrAlreadyTerminal) {
		return
	}
	if err != nil {
		log.Printf("Failed to abandon action %d: %v", a.ID, err)
		return
	}
	log.Printf("Abandoning reversal of action %d after %d attempts; operator intervention required", a.ID, a.AttemptCount+1)
	s.emitter.Emit(model.EventReversalAbandoned, a, fmt.Sprintf("gave up after %d attempts: %s", a.AttemptCount+1, detail))
}
