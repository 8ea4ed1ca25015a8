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

package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tombee/warden/internal/clock"
	"github.com/tombee/warden/internal/config"
	"github.com/tombee/warden/internal/lifecycle"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.PIDFile = filepath.Join(t.TempDir(), "warden.pid")
	cfg.HeartbeatInterval = time.Second
	cfg.ShutdownTimeout = 5 * time.Second
	return cfg
}

func TestDaemon_StartShutdown(t *testing.T) {
	cfg := testConfig(t)
	clk := clock.Start()

	d, err := New(cfg, clk, Options{Version: "test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	pid, err := lifecycle.NewPIDFile(cfg.PIDFile).Read()
	if err != nil {
		t.Fatalf("reading pid file after start: %v", err)
	}
	if pid <= 0 {
		t.Errorf("pid file records %d, want a positive pid", pid)
	}

	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if lifecycle.NewPIDFile(cfg.PIDFile).Exists() {
		t.Error("pid file still present after Shutdown()")
	}

	select {
	case <-d.heartbeat.Done():
	default:
		t.Error("heartbeat worker still running after Shutdown()")
	}
}

func TestDaemon_SecondInstanceRefused(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg, clock.Start(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	second, err := New(cfg, clock.Start(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer first.Shutdown(context.Background()) //nolint:errcheck

	err = second.Start(ctx)
	if !errors.Is(err, lifecycle.ErrLocked) {
		t.Fatalf("second Start() error = %v, want ErrLocked", err)
	}
	if !strings.Contains(err.Error(), "another warden instance is running") {
		t.Errorf("second Start() error %q does not name the conflict", err)
	}

	// The refused instance must not have disturbed the holder's record.
	if _, readErr := lifecycle.NewPIDFile(cfg.PIDFile).Read(); readErr != nil {
		t.Errorf("pid file unreadable after refused start: %v", readErr)
	}
}

func TestDaemon_StartTwice(t *testing.T) {
	cfg := testConfig(t)

	d, err := New(cfg, clock.Start(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer d.Shutdown(context.Background()) //nolint:errcheck

	if err := d.Start(ctx); err == nil {
		t.Error("second Start() on the same daemon returned nil")
	}
}

func TestDaemon_ShutdownWithoutStart(t *testing.T) {
	cfg := testConfig(t)

	d, err := New(cfg, clock.Start(), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := d.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() before Start() error = %v, want nil", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil, clock.Start(), Options{}); err == nil {
		t.Error("New(nil config) returned nil error")
	}
}
