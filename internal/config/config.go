// Package config loads application settings from the environment, with an
// optional .env file for local development. Environment variables win over
// file values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config groups all runtime settings.
type Config struct {
	App  AppConfig
	HTTP HTTPConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env         string // development, staging, production
	LogLevel    string // trace, debug, info, warn, error
	Profile     string // en16931 or basic
	HistoryFile string // path to the invoice history JSON file
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables, falling back to a
// .env file in the working directory. Expected names: FACTURX_ENV,
// FACTURX_LOG_LEVEL, FACTURX_PROFILE, FACTURX_HISTORY_FILE, FACTURX_HTTP_HOST,
// FACTURX_HTTP_PORT, FACTURX_HTTP_READ_TIMEOUT, FACTURX_HTTP_WRITE_TIMEOUT.
func Load() (*Config, error) {
	// Missing .env is fine; the environment alone is a valid source.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FACTURX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PROFILE", "en16931")
	v.SetDefault("HISTORY_FILE", "invoice_history.json")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "30s")

	readTimeout, err := time.ParseDuration(v.GetString("HTTP_READ_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid FACTURX_HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(v.GetString("HTTP_WRITE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid FACTURX_HTTP_WRITE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:         v.GetString("ENV"),
			LogLevel:    v.GetString("LOG_LEVEL"),
			Profile:     v.GetString("PROFILE"),
			HistoryFile: v.GetString("HISTORY_FILE"),
		},
		HTTP: HTTPConfig{
			Host:         v.GetString("HTTP_HOST"),
			Port:         v.GetInt("HTTP_PORT"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}

	if cfg.App.Profile != "en16931" && cfg.App.Profile != "basic" {
		return nil, fmt.Errorf("config: unknown profile %q", cfg.App.Profile)
	}

	return cfg, nil
}
