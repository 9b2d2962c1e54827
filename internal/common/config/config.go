package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port int `env:"PORT" envDefault:"3000"`
	}

	Discord struct {
		BotToken string `env:"BOT_TOKEN,required"`
		// Optional guild for instant command registration; empty means
		// global registration (can take up to an hour to propagate).
		GuildID string `env:"GUILD_ID"`
		// Channel giveaways are posted to when the command gives none.
		DefaultChannelID string `env:"DEFAULT_CHANNEL_ID"`
		// Channel the status panel lives in. Empty disables the panel.
		StatusChannelID string `env:"STATUS_CHANNEL_ID"`
	}

	Branding struct {
		ServerName string `env:"SERVER_NAME" envDefault:"Phantom Forge"`
		LogoURL    string `env:"LOGO_URL"`
	}

	Store struct {
		// Backend selects the persistence layer: "file" or "redis".
		Backend string `env:"STORE_BACKEND" envDefault:"file"`
		Path    string `env:"STORE_PATH" envDefault:"data/giveaways.json"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}
}

func Load() (*Config, error) {
	// Missing .env is fine; in production the variables are set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
