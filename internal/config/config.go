// Package config loads and validates the service configuration from YAML,
// with environment expansion and optional .env loading.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Runner  RunnerConfig  `yaml:"runner"`
	Notify  NotifyConfig  `yaml:"notify"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig configures the SQLite database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// RunnerConfig configures the daily scheduler pass.
type RunnerConfig struct {
	Enabled bool `yaml:"enabled"`
	Hour    int  `yaml:"hour"`
	Minute  int  `yaml:"minute"`
}

// NotifyConfig configures due-task notification delivery. When disabled,
// notices go to the structured log.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{Path: "pmtrack.db"},
		Runner:  RunnerConfig{Enabled: true, Hour: 6, Minute: 0},
		Notify:  NotifyConfig{Subject: "pmtrack.due"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path, expands ${ENV} references and applies
// defaults for anything left unset. A .env file in the working directory is
// loaded first without overriding the process environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("cannot read config file %s", path)).
			WithContext("path", path).Build()
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid config file").
			WithContext("path", path).Build()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.ConfigError("server.addr is required").Build()
	}
	if c.Storage.Path == "" {
		return errors.ConfigError("storage.path is required").Build()
	}
	if c.Runner.Hour < 0 || c.Runner.Hour > 23 {
		return errors.ConfigError("runner.hour must be between 0 and 23").Build()
	}
	if c.Runner.Minute < 0 || c.Runner.Minute > 59 {
		return errors.ConfigError("runner.minute must be between 0 and 59").Build()
	}
	if c.Notify.Enabled {
		if c.Notify.NATSURL == "" {
			return errors.ConfigError("notify.nats_url is required when notify is enabled").Build()
		}
		if c.Notify.Subject == "" {
			return errors.ConfigError("notify.subject is required when notify is enabled").Build()
		}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.ConfigError("logging.level must be debug, info, warn or error").Build()
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return errors.ConfigError("logging.format must be text or json").Build()
	}
	return nil
}
