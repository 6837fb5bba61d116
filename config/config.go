package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variables that override the config file
const (
	EnvURL      = "OVERSEERR_URL"
	EnvToken    = "OVERSEERR_TOKEN"
	EnvEmail    = "OVERSEERR_EMAIL"
	EnvPassword = "OVERSEERR_PASSWORD"
	EnvLogLevel = "LOG_LEVEL"
)

var envBindings = map[string]string{
	"overseerr.url":      EnvURL,
	"overseerr.api_key":  EnvToken,
	"overseerr.email":    EnvEmail,
	"overseerr.password": EnvPassword,
	"logging.level":      EnvLogLevel,
}

// Load loads the configuration from a .env file, the environment and an
// optional config file. An explicit configPath must exist.
func Load(configPath string) (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".overseerr-requests-bot"))
		}

		// Check /etc
		v.AddConfigPath("/etc/overseerr-requests-bot/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Overseerr defaults
	v.SetDefault("overseerr.url", "http://localhost:5055")
	v.SetDefault("overseerr.timeout", 30*time.Second)
	v.SetDefault("overseerr.page_size", 20)
	v.SetDefault("overseerr.rate_limit.requests_per_second", 0)
	v.SetDefault("overseerr.rate_limit.burst", 1)

	// Directory defaults
	v.SetDefault("directory.refresh_interval", 15*time.Minute)
	v.SetDefault("directory.concurrency", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Overseerr.URL == "" {
		return fmt.Errorf("overseerr.url is required")
	}

	if !cfg.Overseerr.UsesCredentials() && (cfg.Overseerr.APIKey == "" || cfg.Overseerr.APIKey == "your-api-key-here") {
		return fmt.Errorf("overseerr.api_key must be set to a valid API key (or set overseerr.email and overseerr.password)")
	}

	if cfg.Overseerr.Timeout < 0 {
		return fmt.Errorf("overseerr.timeout must not be negative")
	}

	if cfg.Overseerr.PageSize < 0 {
		return fmt.Errorf("overseerr.page_size must not be negative")
	}

	if cfg.Overseerr.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("overseerr.rate_limit.requests_per_second must not be negative")
	}

	if cfg.Directory.RefreshInterval < 0 {
		return fmt.Errorf("directory.refresh_interval must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
