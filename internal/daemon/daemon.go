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

// Package daemon wires the warden process together: single-instance
// enforcement through the PID file, the heartbeat worker, and ordered
// startup and shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tombee/warden/internal/clock"
	"github.com/tombee/warden/internal/config"
	"github.com/tombee/warden/internal/lifecycle"
	internallog "github.com/tombee/warden/internal/log"
	"github.com/tombee/warden/internal/trace"
)

// Options contains daemon options set at build time.
type Options struct {
	Version   string
	Commit    string
	BuildDate string
}

// Daemon is the main warden daemon.
type Daemon struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger
	clk    *clock.Clock
	tracer *trace.Tracer
	pid    *lifecycle.PIDFile

	heartbeat *lifecycle.Worker
	stop      chan struct{}

	mu      sync.Mutex
	started bool
}

// New creates a new daemon instance. The clock must be the one started
// at process entry so uptime reports cover the whole process life.
func New(cfg *config.Config, clk *clock.Clock, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon: nil config")
	}

	logger := internallog.WithComponent(internallog.New(&internallog.Config{
		Level:  cfg.Log.Level,
		Format: internallog.Format(cfg.Log.Format),
	}), "daemon")

	return &Daemon{
		cfg:    cfg,
		opts:   opts,
		logger: logger,
		clk:    clk,
		tracer: trace.New(clk),
		pid:    lifecycle.NewPIDFile(cfg.PIDFile),
		stop:   make(chan struct{}),
	}, nil
}

// Logger returns the daemon's logger.
func (d *Daemon) Logger() *slog.Logger {
	return d.logger
}

// Start claims the PID file and launches the heartbeat worker. It
// returns an error if another instance already holds the PID file.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return errors.New("daemon: already started")
	}

	if err := d.pid.Acquire(); err != nil {
		d.tracer.Errno(err)
		if errors.Is(err, lifecycle.ErrLocked) {
			if pid, readErr := d.pid.Read(); readErr == nil {
				return fmt.Errorf("another warden instance is running (pid %d): %w", pid, err)
			}
			return fmt.Errorf("another warden instance is running: %w", err)
		}
		return fmt.Errorf("failed to claim pid file: %w", err)
	}

	d.logger.Info("Warden started",
		slog.String("version", d.opts.Version),
		slog.String("instance_id", d.cfg.InstanceID),
		slog.Int("pid", os.Getpid()),
		slog.String("pid_file", d.cfg.PIDFile),
	)
	d.tracer.Trace(trace.ClassCore, "startup complete, pid=%d", os.Getpid())

	d.heartbeat = lifecycle.Spawn("warden-beat", func() {
		d.runHeartbeat(ctx)
	})

	d.started = true
	return nil
}

// runHeartbeat reports liveness at the configured interval until the
// daemon shuts down.
func (d *Daemon) runHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.HeartbeatInterval)
	defer ticker.Stop()

	d.tracer.Trace(trace.ClassCore, "heartbeat worker running, interval=%s", d.cfg.HeartbeatInterval)

	for {
		select {
		case <-d.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			uptime := d.clk.Elapsed().Round(time.Second)
			d.logger.Debug("heartbeat",
				slog.String("instance_id", d.cfg.InstanceID),
				slog.Duration("uptime", uptime),
			)
			d.tracer.Trace(trace.ClassCore, "heartbeat, uptime=%s", uptime)
		}
	}
}

// Shutdown stops the heartbeat worker and releases the PID file.
// Cleanup problems are logged, not returned: by this point the daemon
// is exiting and nothing can act on them.
func (d *Daemon) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil
	}
	d.started = false

	close(d.stop)

	select {
	case <-d.heartbeat.Done():
	case <-time.After(d.cfg.ShutdownTimeout):
		d.logger.Warn("heartbeat worker did not stop in time",
			slog.String("worker", d.heartbeat.Name()),
			slog.Duration("timeout", d.cfg.ShutdownTimeout),
		)
	case <-ctx.Done():
		d.logger.Warn("shutdown interrupted", internallog.Error(ctx.Err()))
	}

	if err := d.pid.Release(); err != nil {
		d.logger.Warn("could not remove pid file", internallog.Error(err))
	}

	d.logger.Info("Warden stopped",
		slog.Duration("uptime", d.clk.Elapsed().Round(time.Second)),
	)
	return nil
}
