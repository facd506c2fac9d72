package enforcer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"moderation-bot/model"

	"github.com/bwmarrin/discordgo"
)

// Session is the slice of the Discord API the enforcers use. *discordgo.Session
// satisfies it; tests substitute a fake.
type Session interface {
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// NewRegistry builds the kind lookup table backed by a Discord session.
func NewRegistry(s Session) Registry {
	return Registry{
		model.KindTempBan:   &banEnforcer{s: s},
		model.KindTimedMute: &muteEnforcer{s: s},
		model.KindTimedRole: &roleEnforcer{s: s},
		model.KindTimedWarn: &warnEnforcer{},
	}
}

// classify maps a Discord REST failure onto the executor error taxonomy.
// satisfiedOn404 is set for reversals, where a missing ban/member means the
// desired end state already holds.
func classify(err error, satisfiedOn404 bool) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		code := restErr.Response.StatusCode
		switch {
		case code == http.StatusNotFound && satisfiedOn404:
			return ErrAlreadySatisfied
		case code >= 400 && code < 500 && code != http.StatusTooManyRequests:
			return ErrRemoteRejected
		}
	}
	// Network errors, timeouts, 429s and 5xx responses are all retryable.
	return ErrRemoteUnavailable
}

type banEnforcer struct {
	s Session
}

func (e *banEnforcer) Apply(ctx context.Context, a *model.Action) error {
	err := e.s.GuildBanCreateWithReason(a.GuildID, a.UserID, a.Reason, 0, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ban user %s in guild %s (%v): %w", a.UserID, a.GuildID, err, classify(err, false))
	}
	return nil
}

func (e *banEnforcer) Reverse(ctx context.Context, a *model.Action) error {
	err := e.s.GuildBanDelete(a.GuildID, a.UserID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to lift ban for user %s in guild %s (%v): %w", a.UserID, a.GuildID, err, classify(err, true))
	}
	return nil
}

type muteEnforcer struct {
	s Session
}

func (e *muteEnforcer) Apply(ctx context.Context, a *model.Action) error {
	until := a.ExpiresAtTime()
	err := e.s.GuildMemberTimeout(a.GuildID, a.UserID, &until, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to time out user %s in guild %s (%v): %w", a.UserID, a.GuildID, err, classify(err, false))
	}
	return nil
}

func (e *muteEnforcer) Reverse(ctx context.Context, a *model.Action) error {
	// A nil until clears the timeout; clearing an expired one is a no-op.
	err := e.s.GuildMemberTimeout(a.GuildID, a.UserID, nil, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to lift timeout for user %s in guild %s (%v): %w", a.UserID, a.GuildID, err, classify(err, true))
	}
	return nil
}

type roleEnforcer struct {
	s Session
}

func (e *roleEnforcer) Apply(ctx context.Context, a *model.Action) error {
	err := e.s.GuildMemberRoleAdd(a.GuildID, a.UserID, a.RoleID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to add role %s to user %s (%v): %w", a.RoleID, a.UserID, err, classify(err, false))
	}
	return nil
}

func (e *roleEnforcer) Reverse(ctx context.Context, a *model.Action) error {
	err := e.s.GuildMemberRoleRemove(a.GuildID, a.UserID, a.RoleID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to remove role %s from user %s (%v): %w", a.RoleID, a.UserID, err, classify(err, true))
	}
	return nil
}

// warnEnforcer backs timed warnings, which have no remote effect: the record
// itself is the punishment and expiry simply retires it.
type warnEnforcer struct{}

func (e *warnEnforcer) Apply(ctx context.Context, a *model.Action) error {
	return nil
}

func (e *warnEnforcer) Reverse(ctx context.Context, a *model.Action) error {
	return nil
}
