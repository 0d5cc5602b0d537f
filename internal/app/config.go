package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the engine and its collaborators.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	PolicyPath   string `envconfig:"POLICY_PATH" default:"policies.yaml"`
	EntitiesPath string `envconfig:"ENTITIES_PATH" default:"entities.yaml"`

	RedisAddr        string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	DecisionCacheTTL time.Duration `envconfig:"DECISION_CACHE_TTL" default:"30s"`

	ReloadCron string `envconfig:"RELOAD_CRON" default:"*/5 * * * *"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.PolicyPath == "" {
		return nil, errors.New("policy path must be provided")
	}
	if cfg.EntitiesPath == "" {
		return nil, errors.New("entities path must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
