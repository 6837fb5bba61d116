package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Overseerr OverseerrConfig `mapstructure:"overseerr"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// OverseerrConfig holds Overseerr API connection details. Either APIKey or
// Email and Password must be set.
type OverseerrConfig struct {
	URL       string          `mapstructure:"url"`
	APIKey    string          `mapstructure:"api_key"`
	Email     string          `mapstructure:"email"`
	Password  string          `mapstructure:"password"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	PageSize  int             `mapstructure:"page_size"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles outgoing calls. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// DirectoryConfig controls the Discord user and genre cache
type DirectoryConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Concurrency     int           `mapstructure:"concurrency"`
}

// FilterConfig contains named request filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// UsesCredentials reports whether email/password login is configured
func (c OverseerrConfig) UsesCredentials() bool {
	return c.Email != "" && c.Password != ""
}
