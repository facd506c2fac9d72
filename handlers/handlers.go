package handlers

import (
	"log"
	"strings"

	"moderation-bot/bot"
	"moderation-bot/handlers/moderation"
	"moderation-bot/model"
	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"tempban": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleTimedActionCommand(s, i, b, model.KindTempBan)
		}),
		"mute": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleTimedActionCommand(s, i, b, model.KindTimedMute)
		}),
		"warn": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleTimedActionCommand(s, i, b, model.KindTimedWarn)
		}),
		"infractions": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleInfractionsCommand(s, i, b)
		}),
		"mod-admin": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleAdminCommand(s, i, b)
		}),
		"system-info": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		}),
	}
}

// requireAdmin gates a handler on the admin permission level. Authorization
// happens here, before a request ever reaches the intake service.
func requireAdmin(b *bot.Bot, h func(s *discordgo.Session, i *discordgo.InteractionCreate)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		cfg := b.GetConfig()
		serverConfig, ok := cfg.ServerConfigs[i.GuildID]
		if !ok {
			log.Printf("Could not find server config for guild: %s", i.GuildID)
			utils.SendErrorResponse(s, i, "This server is not configured.")
			return
		}
		level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID,
			serverConfig.AdminRoleIDs, serverConfig.UserRoleIDs, cfg.DeveloperUserIDs, cfg.SuperAdminRoleIDs)
		if level != utils.AdminPermission && level != utils.SuperAdminPermission && level != utils.DeveloperPermission {
			utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
			return
		}
		h(s, i)
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionMessageComponent:
			if strings.HasPrefix(i.MessageComponentData().CustomID, "infractions_page:") {
				moderation.HandleInfractionsPageInteraction(s, i, b)
			}
		}
	})
}
