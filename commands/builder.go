package commands

import (
	"moderation-bot/commands/defs"
	"moderation-bot/model"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the application commands registered for a guild.
func GenerateCommands(serverCfg *model.ServerConfig) []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.TempBan,
		defs.Mute,
		defs.Warn,
		defs.Infractions,
		defs.ModAdmin,
		defs.SystemInfo,
	}
}
