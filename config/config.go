package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full application configuration.
// Priority: ENV > YAML > defaults (via env-default tags).
type Config struct {
	Port         string `yaml:"port"          env:"PORT"           env-default:"8080"`
	DatabasePath string `yaml:"database_path" env:"DATABASE_PATH"  env-default:"practicum_tracker.db"`
	UseHTTPS     bool   `yaml:"use_https"     env:"USE_HTTPS"      env-default:"false"`

	// SessionLifetime is the session lifetime in seconds
	SessionLifetime int64 `yaml:"session_lifetime" env:"SESSION_LIFETIME" env-default:"3600"`

	// UnlockSweepMinutes is the interval of the expired-grant audit sweep;
	// zero disables the sweep (expiry is still enforced lazily).
	UnlockSweepMinutes int `yaml:"unlock_sweep_minutes" env:"UNLOCK_SWEEP_MINUTES" env-default:"5"`

	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig holds the OpenID Connect settings
type AuthConfig struct {
	Domain       string `yaml:"domain"        env:"OIDC_DOMAIN"`
	ClientID     string `yaml:"client_id"     env:"OIDC_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"OIDC_CLIENT_SECRET"`
	CallbackURL  string `yaml:"callback_url"  env:"OIDC_CALLBACK_URL"`
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.Auth.Domain == "" {
		return errors.New("OIDC_DOMAIN is required")
	}
	if c.Auth.ClientID == "" {
		return errors.New("OIDC_CLIENT_ID is required")
	}
	if c.Auth.ClientSecret == "" {
		return errors.New("OIDC_CLIENT_SECRET is required")
	}
	if c.Auth.CallbackURL == "" {
		return errors.New("OIDC_CALLBACK_URL is required")
	}
	return nil
}

// Load reads configuration from a YAML file and environment variables.
// The YAML file path is determined by CONFIG_PATH env (fallback
// "./config.yaml"). If the file does not exist and CONFIG_PATH was not set
// explicitly, configuration is loaded from ENV + defaults only.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
