package defs

import "github.com/bwmarrin/discordgo"

var ModAdmin = &discordgo.ApplicationCommand{
	Name:        "mod-admin",
	Description: "Manage recorded moderation actions",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action",
			Description: "Operation to perform",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Cancel (revoke and lift now)", Value: "cancel"},
				{Name: "Detail", Value: "detail"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action_id",
			Description: "ID of the action record",
			Required:    true,
		},
	},
}

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "system-info",
	Description: "Show bot host and runtime information",
}
