// Package audit produces the append-only feed of structured events that
// accompanies every action state transition. Emission is best effort: a lost
// event is logged but never rolls back or retries the transition it records.
package audit

import (
	"fmt"
	"log"
	"time"

	"moderation-bot/model"
	audit_db "moderation-bot/utils/database/audit"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// ChannelSender is the slice of the Discord API the notification sink needs.
type ChannelSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Emitter appends events to the audit table and mirrors them to the
// configured log channel as embeds.
type Emitter struct {
	db           *sqlx.DB
	sender       ChannelSender
	logChannelID string
	now          func() time.Time
}

// New creates an emitter. sender and logChannelID may be empty, in which case
// events are only persisted.
func New(db *sqlx.DB, sender ChannelSender, logChannelID string) *Emitter {
	return &Emitter{
		db:           db,
		sender:       sender,
		logChannelID: logChannelID,
		now:          time.Now,
	}
}

// Emit records one event for an action. Failures are logged and swallowed.
func (e *Emitter) Emit(evType model.AuditEventType, a *model.Action, detail string) {
	ev := model.AuditEvent{
		EventType: evType,
		ActionID:  a.ID,
		GuildID:   a.GuildID,
		UserID:    a.UserID,
		ActorID:   a.ActorID,
		Timestamp: e.now().Unix(),
		Detail:    detail,
	}

	if _, err := audit_db.Append(e.db, ev); err != nil {
		log.Printf("Failed to append audit event %s for action %d: %v", evType, a.ID, err)
	}

	e.notify(ev, a)
}

func (e *Emitter) notify(ev model.AuditEvent, a *model.Action) {
	if e.sender == nil || e.logChannelID == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Action %d: %s", ev.ActionID, ev.EventType),
		Color: eventColor(ev.EventType),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Kind", Value: string(a.Kind), Inline: true},
			{Name: "User", Value: fmt.Sprintf("<@%s> (`%s`)", ev.UserID, ev.UserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", ev.ActorID), Inline: true},
		},
		Timestamp: time.Unix(ev.Timestamp, 0).Format(time.RFC3339),
	}
	if ev.Detail != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Detail", Value: ev.Detail})
	}

	if _, err := e.sender.ChannelMessageSendEmbed(e.logChannelID, embed); err != nil {
		log.Printf("Failed to send audit embed for action %d: %v", ev.ActionID, err)
	}
}

func eventColor(t model.AuditEventType) int {
	switch t {
	case model.EventCreated:
		return 3447003 // Blue
	case model.EventReversalSucceeded:
		return 3066993 // Green
	case model.EventCancelled:
		return 15105570 // Orange
	default:
		return 15158332 // Red
	}
}
