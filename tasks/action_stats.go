package tasks

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"moderation-bot/model"
	actions_db "moderation-bot/utils/database/actions"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// GenerateActionStatsEmbed builds the periodic moderation report for a guild:
// totals per lifecycle state and the per-moderator leaderboard.
func GenerateActionStatsEmbed(db *sqlx.DB, guildID string, duration time.Duration) (*discordgo.MessageEmbed, error) {
	since := time.Now().Add(-duration)

	stats, err := actions_db.ActorStats(db, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor stats for guild %s: %w", guildID, err)
	}
	states, err := actions_db.CountByState(db, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get state counts for guild %s: %w", guildID, err)
	}

	var sortedActors []string
	for actorID := range stats {
		sortedActors = append(sortedActors, actorID)
	}
	sort.Slice(sortedActors, func(i, j int) bool {
		return stats[sortedActors[i]] > stats[sortedActors[j]]
	})

	total := 0
	for _, count := range states {
		total += count
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("### Moderation actions in the last %s\n", duration.String()))
	builder.WriteString(fmt.Sprintf("**Total: %d**\n", total))
	for _, state := range []model.ActionState{model.StateActive, model.StateReversed, model.StateReversalFailed, model.StateCancelled} {
		if count := states[state]; count > 0 {
			builder.WriteString(fmt.Sprintf("- %s: %d\n", state, count))
		}
	}
	builder.WriteString("\n**By moderator:**\n")
	for i, actorID := range sortedActors {
		builder.WriteString(fmt.Sprintf("%d. <@%s>: %d\n", i+1, actorID, stats[actorID]))
	}

	return &discordgo.MessageEmbed{
		Title:       "Moderation report",
		Description: builder.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
		Color:       0x5865F2,
	}, nil
}

// UpdateActionStats posts the moderation report for a guild to the log channel.
func UpdateActionStats(s *discordgo.Session, db *sqlx.DB, channelID, guildID string, duration time.Duration) {
	embed, err := GenerateActionStatsEmbed(db, guildID, duration)
	if err != nil {
		log.Printf("Failed to generate action stats embed: %v", err)
		return
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Failed to send action stats message to channel %s: %v", channelID, err)
	}
}
