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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.False(t, cfg.Daemonize)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NotEmpty(t, cfg.PIDFile)

	_, err := uuid.Parse(cfg.InstanceID)
	assert.NoError(t, err, "generated instance id should be a valid UUID")
}

func TestDefaultPIDFile(t *testing.T) {
	t.Run("prefers runtime directory", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		assert.Equal(t, "/run/user/1000/warden/warden.pid", DefaultPIDFile())
	})

	t.Run("falls back to temp directory", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "")
		assert.Equal(t, filepath.Join(os.TempDir(), "warden.pid"), DefaultPIDFile())
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Daemonize)
	})

	t.Run("parses and fills defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "warden.yaml")
		content := `
instance_id: edge-01
daemonize: true
pid_file: /var/run/warden.pid
log:
  level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "edge-01", cfg.InstanceID)
		assert.True(t, cfg.Daemonize)
		assert.Equal(t, "/var/run/warden.pid", cfg.PIDFile)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format, "unset format should default")
		assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval, "unset interval should default")
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "warden.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0600))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "warden.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0600))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "heartbeat below a second",
			mutate:  func(c *Config) { c.HeartbeatInterval = 500 * time.Millisecond },
			wantErr: true,
		},
		{
			name:    "negative shutdown timeout",
			mutate:  func(c *Config) { c.ShutdownTimeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "relative pid file path",
			mutate:  func(c *Config) { c.PIDFile = "warden.pid" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
		{
			name:   "bug level accepted",
			mutate: func(c *Config) { c.Log.Level = "bug" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
