package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Goatflow GoatflowConfig `mapstructure:"goatflow"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GoatflowConfig holds the server URL and one of the three credential sets:
// an API key, a pre-obtained token pair, or login credentials.
type GoatflowConfig struct {
	URL          string `mapstructure:"url"`
	APIKey       string `mapstructure:"api_key"`
	Token        string `mapstructure:"token"`
	RefreshToken string `mapstructure:"refresh_token"`
	ExpiresAt    string `mapstructure:"expires_at"` // RFC 3339, optional
	Email        string `mapstructure:"email"`
	Password     string `mapstructure:"password"`
}

// HTTPConfig contains per-call timeout budgets.
type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// HasAPIKey reports whether API-key auth is configured.
func (c GoatflowConfig) HasAPIKey() bool { return c.APIKey != "" }

// HasToken reports whether token auth is configured.
func (c GoatflowConfig) HasToken() bool { return c.Token != "" }

// HasLogin reports whether login credentials are configured.
func (c GoatflowConfig) HasLogin() bool { return c.Email != "" && c.Password != "" }
