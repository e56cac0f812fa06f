package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validBaseConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			AccessToken: "token",
			Role:        "driver",
		},
		Poll: PollConfig{
			ListInterval: 30 * time.Second,
			TripInterval: 5 * time.Second,
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	if err := validBaseConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_MissingBaseURL(t *testing.T) {
	cfg := validBaseConfig()
	cfg.API.BaseURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if !strings.Contains(err.Error(), "TOOTA_API_BASE_URL") {
		t.Errorf("expected error to mention TOOTA_API_BASE_URL, got: %v", err)
	}
}

func TestConfig_Validate_NonHTTPBaseURL(t *testing.T) {
	cfg := validBaseConfig()
	cfg.API.BaseURL = "ftp://example.com"

	if cfg.Validate() == nil {
		t.Error("expected error for non-http base URL")
	}
}

func TestConfig_Validate_InvalidRole(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Auth.Role = "admin"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
	if !strings.Contains(err.Error(), "TOOTA_AUTH_ROLE") {
		t.Errorf("expected error to mention TOOTA_AUTH_ROLE, got: %v", err)
	}
}

func TestConfig_Validate_NoCredentials(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Auth.AccessToken = ""

	if cfg.Validate() == nil {
		t.Error("expected error when neither token nor email/password set")
	}

	cfg.Auth.Email = "driver@toota.app"
	cfg.Auth.Password = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("email+password should satisfy the credential requirement: %v", err)
	}
}

func TestConfig_Validate_NonPositiveIntervals(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Poll.ListInterval = 0
	if cfg.Validate() == nil {
		t.Error("expected error for zero list interval")
	}

	cfg = validBaseConfig()
	cfg.Poll.TripInterval = -time.Second
	if cfg.Validate() == nil {
		t.Error("expected error for negative trip interval")
	}
}

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("TOOTA_AUTH_ACCESS_TOKEN", "env-token")
	t.Setenv("TOOTA_POLL_TRIP_INTERVAL", "2s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("expected default base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.Auth.AccessToken != "env-token" {
		t.Errorf("expected env token, got %q", cfg.Auth.AccessToken)
	}
	if cfg.Poll.TripInterval != 2*time.Second {
		t.Errorf("expected 2s trip interval from env, got %v", cfg.Poll.TripInterval)
	}
	if cfg.Role() != "driver" {
		t.Errorf("expected default driver role, got %s", cfg.Role())
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tripwatch.yaml")
	yaml := "api:\n  base_url: https://api.toota.app\nauth:\n  role: rider\n  access_token: file-token\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://api.toota.app" {
		t.Errorf("expected base URL from file, got %s", cfg.API.BaseURL)
	}
	if cfg.Role() != "rider" {
		t.Errorf("expected rider role from file, got %s", cfg.Role())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("file config should validate: %v", err)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
