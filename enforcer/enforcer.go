// Package enforcer applies and reverses the remote moderation effect of each
// action kind. Implementations are collected in a Registry so supporting a
// new kind means adding a table entry, not touching the scheduler.
package enforcer

import (
	"context"
	"errors"
	"fmt"

	"moderation-bot/model"
)

var (
	// ErrRemoteUnavailable marks a transient failure: the scheduler retries
	// the reversal on a later tick.
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	// ErrRemoteRejected marks a permanent refusal unrelated to timing, such
	// as revoked permissions. Retrying will not succeed.
	ErrRemoteRejected = errors.New("remote service rejected the operation")
	// ErrAlreadySatisfied means the remote state already matches the desired
	// outcome, e.g. reversing a ban that was lifted by hand. Treated as success.
	ErrAlreadySatisfied = errors.New("remote state already satisfied")
)

// Enforcer applies the side effect of one action kind and its inverse. Both
// operations are idempotent at the remote service where the API allows it.
type Enforcer interface {
	Apply(ctx context.Context, a *model.Action) error
	Reverse(ctx context.Context, a *model.Action) error
}

// Registry maps each action kind to its enforcer.
type Registry map[model.ActionKind]Enforcer

// Lookup returns the enforcer for a kind.
func (r Registry) Lookup(kind model.ActionKind) (Enforcer, error) {
	e, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("no enforcer registered for kind %q", kind)
	}
	return e, nil
}
