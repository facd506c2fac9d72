package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"moderation-bot/bot"
	"moderation-bot/intake"
	"moderation-bot/model"
	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleTimedActionCommand backs the /tempban, /mute and /warn commands. It
// turns the options into an intake request; everything after that (apply,
// persist, audit) is the intake service's job.
func HandleTimedActionCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, kind model.ActionKind) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	if targetUser == nil {
		utils.SendFollowUpError(s, i.Interaction, "Could not resolve the target user.")
		return
	}

	duration, err := utils.ParseDuration(opts["duration"].StringValue())
	if err != nil || duration <= 0 {
		utils.SendFollowUpError(s, i.Interaction, "Invalid duration. Use values like 30m, 12h, 7d or 2w.")
		return
	}

	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}
	supersede := false
	if opt, ok := opts["supersede"]; ok {
		supersede = opt.BoolValue()
	}

	// If the guild configures a mute role, /mute grants that role instead of
	// a native timeout so the mute survives longer than Discord's 28-day cap.
	roleID := ""
	if kind == model.KindTimedMute {
		if serverCfg, ok := b.GetConfig().ServerConfigs[i.GuildID]; ok && serverCfg.MuteRoleID != "" {
			kind = model.KindTimedRole
			roleID = serverCfg.MuteRoleID
		}
	}

	if !utils.CheckAndSetSubmitLock(i.GuildID, targetUser.ID) {
		utils.SendFollowUpError(s, i.Interaction, "Another action for this user is being processed, try again shortly.")
		return
	}
	defer utils.ReleaseSubmitLock(i.GuildID, targetUser.ID)

	action, err := b.Intake.Submit(context.Background(), intake.SubmitRequest{
		Kind:      kind,
		GuildID:   i.GuildID,
		UserID:    targetUser.ID,
		ActorID:   i.Member.User.ID,
		Reason:    reason,
		RoleID:    roleID,
		ExpiresAt: time.Now().Add(duration),
		Supersede: supersede,
	})
	if err != nil {
		respondSubmitError(s, i, err)
		return
	}

	utils.SendFollowUpEmbed(s, i.Interaction, buildActionEmbed(action, targetUser, i.Member.User), nil)
}

func respondSubmitError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var validationErr *intake.ValidationError
	var conflictErr *intake.ConflictError

	switch {
	case errors.As(err, &validationErr):
		utils.SendFollowUpError(s, i.Interaction, validationErr.Reason)
	case errors.As(err, &conflictErr) && conflictErr.Applied:
		// The remote effect landed but no record exists; this needs an
		// explicit supersede or manual reconciliation, so say so.
		utils.SendFollowUpError(s, i.Interaction,
			"The action was applied but could not be recorded because an active one already exists. Re-run with supersede to replace it.")
	case errors.As(err, &conflictErr):
		utils.SendFollowUpError(s, i.Interaction,
			"This user already has an active action of that kind. Re-run with supersede to replace it.")
	default:
		log.Printf("Failed to submit action: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to apply the action, nothing was recorded.")
	}
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func buildActionEmbed(a *model.Action, target, actor *discordgo.User) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s %s `%s` (`%s`)", kindEmoji(a.Kind), kindVerb(a.Kind), target.Username, target.ID),
		Color: 0x57F287,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reason", Value: orNone(a.Reason), Inline: true},
			{Name: "Expires", Value: fmt.Sprintf("<t:%d:R>", a.ExpiresAt), Inline: true},
			{Name: "Action", Value: fmt.Sprintf("recorded with ID `%d`", a.ID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Issued by %s (%s)", actor.Username, actor.ID),
		},
	}
}

func orNone(reason string) string {
	if reason == "" {
		return "no reason specified"
	}
	return reason
}

func kindEmoji(k model.ActionKind) string {
	switch k {
	case model.KindTempBan:
		return "🔨"
	case model.KindTimedMute, model.KindTimedRole:
		return "🔇"
	case model.KindTimedWarn:
		return "⚠️"
	}
	return "❔"
}

func kindVerb(k model.ActionKind) string {
	switch k {
	case model.KindTempBan:
		return "Banned"
	case model.KindTimedMute, model.KindTimedRole:
		return "Muted"
	case model.KindTimedWarn:
		return "Warned"
	}
	return "Recorded"
}
