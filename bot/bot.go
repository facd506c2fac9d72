package bot

import (
	"log"
	"sync/atomic"

	"moderation-bot/audit"
	"moderation-bot/commands"
	"moderation-bot/config"
	"moderation-bot/enforcer"
	"moderation-bot/intake"
	"moderation-bot/model"
	"moderation-bot/scanner"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *sqlx.DB
	Enforcers          enforcer.Registry
	Emitter            *audit.Emitter
	Intake             *intake.Service
	config             atomic.Value // *model.Config
	scheduler          *Scheduler
	done               chan struct{}
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.StateEnabled = true

	b := &Bot{
		Session: dg,
		DB:      db,
		done:    make(chan struct{}),
	}
	b.config.Store(cfg)

	b.Enforcers = enforcer.NewRegistry(dg)
	b.Emitter = audit.New(db, dg, cfg.LogChannelID)
	b.Intake = intake.NewService(db, b.Enforcers, b.Emitter)
	expiry := scanner.New(db, b.Enforcers, b.Emitter, cfg.Scheduler)
	b.scheduler = NewScheduler(b, expiry)

	return b, nil
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetScheduler() *Scheduler {
	return b.scheduler
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
	b.DB.Close()
}

// RefreshCommands re-registers the slash commands for one guild.
func (b *Bot) RefreshCommands(guildID string) {
	serverCfg, ok := b.GetConfig().ServerConfigs[guildID]
	if !ok {
		log.Printf("Could not find server config for guild: %s", guildID)
		return
	}

	cmds := commands.GenerateCommands(&serverCfg)
	log.Printf("Registering %d commands for guild %s...", len(cmds), serverCfg.GuildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, serverCfg.GuildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", serverCfg.GuildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}

// UnregisterCommands clears the slash commands registered for one guild.
func (b *Bot) UnregisterCommands(guildID string) {
	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, nil); err != nil {
		log.Printf("cannot unregister commands for guild '%s': %v", guildID, err)
	}
}

// ReloadConfig re-reads the configuration and refreshes guild commands.
func (b *Bot) ReloadConfig() error {
	log.Println("Reloading configuration...")
	newCfg, err := config.Load()
	if err != nil {
		log.Printf("Error reloading config: %v", err)
		return err
	}
	b.config.Store(newCfg)

	for _, serverCfg := range newCfg.ServerConfigs {
		if serverCfg.Enable {
			go b.RefreshCommands(serverCfg.GuildID)
		}
	}
	return nil
}
