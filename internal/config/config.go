// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the server configuration, populated from environment
// variables with sensible defaults for local use.
type Config struct {
	Addr       string `env:"KLEIDERKAMMER_ADDR" env-default:":8080"`
	DBPath     string `env:"KLEIDERKAMMER_DB" env-default:"kleiderkammer.sqlite3"`
	LogPath    string `env:"KLEIDERKAMMER_LOG" env-default:""`
	AdminEmail string `env:"KLEIDERKAMMER_ADMIN_EMAIL" env-default:"admin@kleiderkammer.local"`

	ReadHeaderTimeout time.Duration `env:"KLEIDERKAMMER_READ_HEADER_TIMEOUT" env-default:"10s"`
	ReadTimeout       time.Duration `env:"KLEIDERKAMMER_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout      time.Duration `env:"KLEIDERKAMMER_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout       time.Duration `env:"KLEIDERKAMMER_IDLE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout   time.Duration `env:"KLEIDERKAMMER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}
