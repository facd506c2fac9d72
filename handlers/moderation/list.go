package moderation

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
	actions_db "moderation-bot/utils/database/actions"

	"github.com/bwmarrin/discordgo"
)

const listPageSize = 10

// HandleInfractionsCommand backs /infractions: detail lookup by id, or a
// paginated listing by user, moderator or whole server.
func HandleInfractionsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i)
	searchBy := opts["search_by"].StringValue()
	input := ""
	if opt, ok := opts["input"]; ok {
		input = strings.TrimSpace(opt.StringValue())
	}

	if searchBy == "action_id" {
		actionID, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			utils.SendFollowUpError(s, i.Interaction, "Invalid action ID.")
			return
		}
		handleDetail(s, i, b, actionID)
		return
	}

	if searchBy != "guild" && input == "" {
		utils.SendFollowUpError(s, i.Interaction, "This search needs a user or moderator ID.")
		return
	}

	embed, components, err := buildListPage(b, i.GuildID, searchBy, input, 1)
	if err != nil {
		log.Printf("Failed to list actions: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to load the action list.")
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed, components)
}

// HandleInfractionsPageInteraction serves the pagination buttons. The button
// custom id carries infractions_page:<page>:<search_by>:<input>.
func HandleInfractionsPageInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) < 3 {
		return
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 1 {
		return
	}
	searchBy := parts[2]
	input := ""
	if len(parts) > 3 {
		input = parts[3]
	}

	embed, components, err := buildListPage(b, i.GuildID, searchBy, input, page)
	if err != nil {
		log.Printf("Failed to build action list page: %v", err)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		log.Printf("Failed to update action list page: %v", err)
	}
}

func buildListPage(b *bot.Bot, guildID, searchBy, input string, page int) (*discordgo.MessageEmbed, []discordgo.MessageComponent, error) {
	var records []model.Action
	var title string
	var err error

	switch searchBy {
	case "user":
		records, err = actions_db.ListByUser(b.GetDB(), guildID, input)
		title = fmt.Sprintf("Actions for <@%s>", input)
	case "moderator":
		records, err = actions_db.ListByActor(b.GetDB(), guildID, input)
		title = fmt.Sprintf("Actions by <@%s>", input)
	case "guild":
		records, err = actions_db.ListByGuild(b.GetDB(), guildID)
		title = "All actions on this server"
	default:
		return nil, nil, fmt.Errorf("unknown search mode %q", searchBy)
	}
	if err != nil {
		return nil, nil, err
	}

	totalPages := (len(records) + listPageSize - 1) / listPageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * listPageSize
	end := start + listPageSize
	if end > len(records) {
		end = len(records)
	}

	var lines []string
	for _, a := range records[start:end] {
		lines = append(lines, fmt.Sprintf("• [`%d`] %s %s on <@%s> — %s, expires <t:%d:R>",
			a.ID, kindEmoji(a.Kind), a.Kind, a.UserID, a.State, a.ExpiresAt))
	}
	description := strings.Join(lines, "\n")
	if description == "" {
		description = "Seems like there's nothing here yet."
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       0x3498DB,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d • %d total", page, totalPages, len(records)),
		},
	}

	var args []string
	args = append(args, searchBy)
	if input != "" {
		args = append(args, input)
	}
	components := utils.CreatePaginationComponents(page, totalPages, "infractions_page", args...)
	return embed, components, nil
}
