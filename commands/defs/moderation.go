package defs

import "github.com/bwmarrin/discordgo"

var durationOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "duration",
	Description: "How long the action lasts, e.g. 30m, 12h, 7d, 2w",
	Required:    true,
}

var reasonOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "reason",
	Description: "Reason recorded in the audit log",
	Required:    false,
}

var supersedeOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionBoolean,
	Name:        "supersede",
	Description: "Replace an existing active action of the same kind for this user",
	Required:    false,
}

var TempBan = &discordgo.ApplicationCommand{
	Name:        "tempban",
	Description: "Ban a user temporarily; the ban is lifted automatically at expiry",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to ban",
			Required:    true,
		},
		durationOption,
		reasonOption,
		supersedeOption,
	},
}

var Mute = &discordgo.ApplicationCommand{
	Name:        "mute",
	Description: "Time a user out; the timeout is lifted automatically at expiry",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to mute",
			Required:    true,
		},
		durationOption,
		reasonOption,
		supersedeOption,
	},
}

var Warn = &discordgo.ApplicationCommand{
	Name:        "warn",
	Description: "Record a timed warning for a user",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to warn",
			Required:    true,
		},
		durationOption,
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason recorded in the audit log",
			Required:    true,
		},
		supersedeOption,
	},
}

var Infractions = &discordgo.ApplicationCommand{
	Name:        "infractions",
	Description: "Look up recorded moderation actions",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "search_by",
			Description: "How to search",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Action ID", Value: "action_id"},
				{Name: "User", Value: "user"},
				{Name: "Moderator", Value: "moderator"},
				{Name: "Whole server", Value: "guild"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "input",
			Description: "Action ID, user ID or moderator ID (omit for whole server)",
			Required:    false,
		},
	},
}
