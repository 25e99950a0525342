// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the host configuration from an optional YAML file
// with environment variable overrides. Precedence: env > file > default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/united-manufacturing-hub/payment-core/pkg/logger"
)

// Environment variables recognized by Load.
const (
	EnvConfigPath     = "PAYMENT_CORE_CONFIG"
	EnvHTTPAddress    = "PAYMENT_CORE_HTTP_ADDRESS"
	EnvMetricsAddress = "PAYMENT_CORE_METRICS_ADDRESS"
	EnvHTTPDebug      = "PAYMENT_CORE_HTTP_DEBUG"

	// Shared with pkg/logger; listed here so a config file can set them too.
	envLoggingLevel  = "LOGGING_LEVEL"
	envLoggingFormat = "LOGGING_FORMAT"
)

// LoggingConfig mirrors the logger package's env knobs so a config file can
// set them too. Env always wins.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// HTTPConfig configures the action/state HTTP adapter.
type HTTPConfig struct {
	Address string `yaml:"address,omitempty"`
	Debug   bool   `yaml:"debug,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Address string `yaml:"address,omitempty"`
}

// Config is the full host configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	HTTP    HTTPConfig    `yaml:"http,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// DefaultConfig returns the configuration used when no file and no env
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  string(logger.ProductionLevel),
			Format: string(logger.FormatConsole),
		},
		HTTP: HTTPConfig{
			Address: ":8080",
		},
		Metrics: MetricsConfig{
			Address: ":8081",
		},
	}
}

// Load builds the effective configuration. A missing config file is not an
// error; a present but unparsable one is.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv(EnvConfigPath)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		logger.For(logger.ComponentConfig).Debugf("Loaded configuration from %s", path)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Parse decodes a YAML document into a Config on top of the defaults.
// Env overrides are not applied; Load does that.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return fmt.Errorf("http.address must not be empty")
	}

	if c.Metrics.Address == "" {
		return fmt.Errorf("metrics.address must not be empty")
	}

	if c.HTTP.Address == c.Metrics.Address {
		return fmt.Errorf("http.address and metrics.address must differ, both are %s", c.HTTP.Address)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvHTTPAddress); v != "" {
		cfg.HTTP.Address = v
	}

	if v := os.Getenv(EnvMetricsAddress); v != "" {
		cfg.Metrics.Address = v
	}

	if v := os.Getenv(EnvHTTPDebug); v != "" {
		cfg.HTTP.Debug = v == "true" || v == "1"
	}

	if v := os.Getenv(envLoggingLevel); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv(envLoggingFormat); v != "" {
		cfg.Logging.Format = v
	}
}
