// Copyright 2025 Tom Barlow
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

// Package config loads and validates the warden configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config represents the complete warden configuration.
type Config struct {
	// InstanceID identifies this daemon instance in logs and status
	// output. Generated when absent.
	InstanceID string `yaml:"instance_id,omitempty"`

	// Daemonize switches the process into background mode at startup.
	// Default: false
	Daemonize bool `yaml:"daemonize"`

	// PIDFile is the path to the PID file used for single-instance
	// enforcement. Empty selects the default runtime path.
	PIDFile string `yaml:"pid_file,omitempty"`

	// HeartbeatInterval is how often the heartbeat worker reports
	// liveness. Default: 30s
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval,omitempty"`

	// ShutdownTimeout is the maximum duration to wait for workers
	// during graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`

	// Log configures logging output.
	Log LogConfig `yaml:"log"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	// Level sets the minimum log level (debug, info, warn, error, bug).
	// Default: info
	Level string `yaml:"level,omitempty"`

	// Format sets the output format (console, json).
	// Default: console
	Format string `yaml:"format,omitempty"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.InstanceID == "" {
		c.InstanceID = uuid.NewString()
	}
	if c.PIDFile == "" {
		c.PIDFile = DefaultPIDFile()
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// DefaultPIDFile returns the default PID file path, preferring the
// user's runtime directory when one is available.
func DefaultPIDFile() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "warden", "warden.pid")
	}
	return filepath.Join(os.TempDir(), "warden.pid")
}

// Load reads the configuration from the given path. A missing file is
// not an error: defaults apply, so the daemon runs unconfigured.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.HeartbeatInterval < time.Second {
		return fmt.Errorf("%w: heartbeat_interval must be at least 1s, got %s", ErrInvalidConfig, c.HeartbeatInterval)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: shutdown_timeout must not be negative, got %s", ErrInvalidConfig, c.ShutdownTimeout)
	}
	if !filepath.IsAbs(c.PIDFile) {
		return fmt.Errorf("%w: pid_file must be an absolute path, got %q", ErrInvalidConfig, c.PIDFile)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error", "bug":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
