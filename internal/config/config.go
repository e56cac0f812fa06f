// Package config loads tripwatch configuration from the environment and
// an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/toota/tripsync/internal/model"
)

// Config holds all client configuration.
type Config struct {
	// API is the trip service connection.
	API APIConfig `mapstructure:"api"`
	// Auth carries the credential inputs. Either AccessToken or
	// Email+Password is required.
	Auth AuthConfig `mapstructure:"auth"`
	// Poll tunes the refresh schedules.
	Poll PollConfig `mapstructure:"poll"`
}

// APIConfig holds trip service settings.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds credential settings. Tokens and passwords come from
// the environment; nothing here is persisted by this module.
type AuthConfig struct {
	AccessToken string `mapstructure:"access_token"`
	Email       string `mapstructure:"email"`
	Password    string `mapstructure:"password"`
	Role        string `mapstructure:"role"`
}

// PollConfig holds refresh intervals.
type PollConfig struct {
	ListInterval time.Duration `mapstructure:"list_interval"`
	TripInterval time.Duration `mapstructure:"trip_interval"`
}

// Load reads configuration from TOOTA_* environment variables and, when
// path is non-empty, a YAML file. Environment values win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TOOTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("auth.role", string(model.RoleDriver))
	// Registering empty defaults makes AutomaticEnv feed these keys into
	// Unmarshal.
	v.SetDefault("auth.access_token", "")
	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("poll.list_interval", 30*time.Second)
	v.SetDefault("poll.trip_interval", 5*time.Second)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("TOOTA_API_BASE_URL is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("TOOTA_API_BASE_URL must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("TOOTA_API_TIMEOUT must be positive")
	}

	if !model.Role(c.Auth.Role).Valid() {
		return fmt.Errorf("TOOTA_AUTH_ROLE must be %q or %q, got %q", model.RoleRider, model.RoleDriver, c.Auth.Role)
	}
	if c.Auth.AccessToken == "" && (c.Auth.Email == "" || c.Auth.Password == "") {
		return errors.New("either TOOTA_AUTH_ACCESS_TOKEN or TOOTA_AUTH_EMAIL and TOOTA_AUTH_PASSWORD are required")
	}

	if c.Poll.ListInterval <= 0 {
		return errors.New("TOOTA_POLL_LIST_INTERVAL must be positive")
	}
	if c.Poll.TripInterval <= 0 {
		return errors.New("TOOTA_POLL_TRIP_INTERVAL must be positive")
	}
	return nil
}

// Role returns the configured actor role.
func (c *Config) Role() model.Role {
	return model.Role(c.Auth.Role)
}
