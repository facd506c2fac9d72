package model

import "time"

// ServerConfig holds the per-guild settings loaded from data/server_config.json.
type ServerConfig struct {
	Name         string   `json:"name"`
	GuildID      string   `json:"guilds_id"`
	Enable       bool     `json:"enable"`
	AdminRoleIDs []string `json:"admin_role_ids"`
	UserRoleIDs  []string `json:"user_role_ids"`
	MuteRoleID   string   `json:"mute_role_id"` // role granted by timed_role punishments
}

// SchedulerConfig carries the expiry scheduler tuning knobs. Values are
// explicit configuration rather than package constants so tests can drive
// the scheduler deterministically.
type SchedulerConfig struct {
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	BatchLimit     int           `mapstructure:"batch_limit"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	ReverseTimeout time.Duration `mapstructure:"reverse_timeout"`
}

// Config stores the application configuration.
type Config struct {
	BotToken          string
	AppID             string
	LogChannelID      string
	DatabasePath      string
	DeveloperUserIDs  []string
	SuperAdminRoleIDs []string
	ServerConfigs     map[string]ServerConfig
	Scheduler         SchedulerConfig
}
