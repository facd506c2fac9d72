package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
	actions_db "moderation-bot/utils/database/actions"
	audit_db "moderation-bot/utils/database/audit"

	"github.com/bwmarrin/discordgo"
)

// HandleAdminCommand backs /mod-admin: cancelling an action early or showing
// its full record with the audit trail.
func HandleAdminCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i)
	actionID, err := strconv.ParseInt(opts["action_id"].StringValue(), 10, 64)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, "Invalid action ID.")
		return
	}

	switch opts["action"].StringValue() {
	case "cancel":
		handleCancel(s, i, b, actionID)
	case "detail":
		handleDetail(s, i, b, actionID)
	default:
		utils.SendFollowUpError(s, i.Interaction, "Unknown operation.")
	}
}

func handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, actionID int64) {
	action, err := b.Intake.Cancel(context.Background(), actionID, i.Member.User.ID)
	switch {
	case errors.Is(err, actions_db.ErrNotFound):
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("No action found with ID `%d`.", actionID))
	case errors.Is(err, actions_db.ErrAlreadyTerminal):
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Action `%d` is already finished and cannot be cancelled.", actionID))
	case err != nil:
		log.Printf("Failed to cancel action %d: %v", actionID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to cancel the action.")
	default:
		utils.SendFollowUp(s, i.Interaction,
			fmt.Sprintf("✅ Cancelled %s `%d` for <@%s>; the effect has been lifted.", action.Kind, action.ID, action.UserID))
	}
}

func handleDetail(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, actionID int64) {
	action, err := actions_db.GetByID(b.GetDB(), actionID)
	if errors.Is(err, actions_db.ErrNotFound) || (err == nil && action.GuildID != i.GuildID) {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("No action found with ID `%d` on this server.", actionID))
		return
	}
	if err != nil {
		log.Printf("Failed to look up action %d: %v", actionID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to look up the action.")
		return
	}

	events, err := audit_db.ListByAction(b.GetDB(), actionID)
	if err != nil {
		log.Printf("Failed to load audit events for action %d: %v", actionID, err)
		// Non-fatal, show the record without its trail.
	}

	utils.SendFollowUpEmbed(s, i.Interaction, buildDetailEmbed(action, events), nil)
}

func buildDetailEmbed(a *model.Action, events []model.AuditEvent) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Action `%d`", a.ID),
		Color: 0x3498DB,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Kind", Value: fmt.Sprintf("%s %s", kindEmoji(a.Kind), a.Kind), Inline: true},
			{Name: "State", Value: string(a.State), Inline: true},
			{Name: "User", Value: fmt.Sprintf("<@%s> (`%s`)", a.UserID, a.UserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", a.ActorID), Inline: true},
			{Name: "Created", Value: fmt.Sprintf("<t:%d:f>", a.CreatedAt), Inline: true},
			{Name: "Expires", Value: fmt.Sprintf("<t:%d:f>", a.ExpiresAt), Inline: true},
			{Name: "Reason", Value: orNone(a.Reason)},
		},
	}

	if a.AttemptCount > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Reversal attempts",
			Value:  fmt.Sprintf("%d (last <t:%d:R>)", a.AttemptCount, a.LastAttemptAt),
			Inline: true,
		})
	}

	if len(events) > 0 {
		var lines []string
		for _, ev := range events {
			line := fmt.Sprintf("• <t:%d:f> — %s", ev.Timestamp, ev.EventType)
			if ev.Detail != "" {
				line += ": " + ev.Detail
			}
			lines = append(lines, line)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Audit trail",
			Value: strings.Join(lines, "\n"),
		})
	}

	embed.Timestamp = time.Unix(a.CreatedAt, 0).Format(time.RFC3339)
	return embed
}
