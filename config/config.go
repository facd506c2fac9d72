package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"moderation-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables and data files.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, errors.New("BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		return nil, errors.New("APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, audit notifications will be disabled")
	}

	dbPath := os.Getenv("ACTION_DB_PATH")
	if dbPath == "" {
		dbPath = "data/actions.db"
	}

	cfg := &model.Config{
		BotToken:          token,
		AppID:             appID,
		LogChannelID:      logChannelID,
		DatabasePath:      dbPath,
		DeveloperUserIDs:  splitIDs(os.Getenv("DEVELOPER_USER_IDS")),
		SuperAdminRoleIDs: splitIDs(os.Getenv("SUPER_ADMIN_ROLE_IDS")),
		ServerConfigs:     make(map[string]model.ServerConfig),
	}

	if err := loadJSON("data/server_config.json", &cfg.ServerConfigs); err != nil {
		return nil, err
	}

	scheduler, err := LoadSchedulerConfig("data")
	if err != nil {
		return nil, err
	}
	cfg.Scheduler = scheduler

	return cfg, nil
}

// LoadSchedulerConfig reads the expiry scheduler tuning from scheduler.yaml
// in the given directory, falling back to defaults when the file is absent.
func LoadSchedulerConfig(dir string) (model.SchedulerConfig, error) {
	v := viper.New()
	v.SetConfigName("scheduler")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("tick_interval", 30*time.Second)
	v.SetDefault("batch_limit", 50)
	v.SetDefault("max_attempts", 10)
	v.SetDefault("reverse_timeout", 10*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return model.SchedulerConfig{}, fmt.Errorf("failed to read scheduler config: %w", err)
		}
	}

	var cfg model.SchedulerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return model.SchedulerConfig{}, fmt.Errorf("failed to unmarshal scheduler config: %w", err)
	}
	return cfg, nil
}

func loadJSON(path string, v interface{}) error {
	configFile, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: Config file not found at %s, skipping.", path)
			return nil
		}
		return err
	}
	return json.Unmarshal(configFile, v)
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
