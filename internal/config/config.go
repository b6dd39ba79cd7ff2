// /internal/config/config.go
package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	HomeGuildID  string `env:"HOME_GUILD_ID"`
	Prefix       string `env:"BOT_PREFIX" envDefault:"xd"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DeveloperID  string `env:"DEVELOPER_ID"`
}

func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// IsDeveloper reports whether a user ID matches the configured developer.
func IsDeveloper(cfg *Config, userID string) bool {
	return cfg != nil && cfg.DeveloperID != "" && userID == cfg.DeveloperID
}
