// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	errInvalidPort           = errors.New("config: port must be 1-65535")
	errConcurrencyOutOfRange = errors.New("config: probe_concurrency must be 1-100")
	errMaxResourcesRange     = errors.New("config: max_resources must be 1-1000")
)

// Config holds all service configuration, environment-first with an
// optional config file.
type Config struct {
	Port             int    `mapstructure:"port"`
	LogLevel         string `mapstructure:"log_level"`
	MaxResources     int    `mapstructure:"max_resources"`
	ProbeConcurrency int    `mapstructure:"probe_concurrency"`
}

// Load builds a Config from INSPECTOR_-prefixed environment variables
// and, when path is non-empty, a config file. Defaults match the
// inspection boundary constants (200 resources, batches of 8).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("max_resources", 200)
	v.SetDefault("probe_concurrency", 8)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", errInvalidPort, c.Port)
	}
	if c.ProbeConcurrency < 1 || c.ProbeConcurrency > 100 {
		return fmt.Errorf("%w: got %d", errConcurrencyOutOfRange, c.ProbeConcurrency)
	}
	if c.MaxResources < 1 || c.MaxResources > 1000 {
		return fmt.Errorf("%w: got %d", errMaxResourcesRange, c.MaxResources)
	}
	return nil
}
