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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tombee/warden/internal/clock"
	"github.com/tombee/warden/internal/config"
	"github.com/tombee/warden/internal/lifecycle"
	"github.com/tombee/warden/internal/log"
)

// RunOptions configures daemon execution.
type RunOptions struct {
	Version   string
	Commit    string
	BuildDate string

	// Config overrides
	ConfigPath string
	PIDFile    string
	InstanceID string
	Foreground bool
}

// Run starts the daemon and blocks until shutdown. This is the main
// entry point for daemon execution, used by both the foreground parent
// (warden start) and the detached background copy.
func Run(opts RunOptions) error {
	// The process clock starts before anything can fail, so uptime in
	// every later report is measured from true process entry.
	clk := clock.Start()

	logger := log.New(log.FromEnv())
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		logger.Error("Failed to load config", log.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply overrides from options
	if opts.PIDFile != "" {
		cfg.PIDFile = opts.PIDFile
	}
	if opts.InstanceID != "" {
		cfg.InstanceID = opts.InstanceID
	}
	if opts.Foreground {
		cfg.Daemonize = false
	}

	// Backgrounding happens before the PID file is claimed so the file
	// records the daemon copy's PID, not the short-lived parent's.
	if cfg.Daemonize {
		lifecycle.NewDaemonizer(logger).Daemonize()
	}

	d, err := New(cfg, clk, Options{
		Version:   opts.Version,
		Commit:    opts.Commit,
		BuildDate: opts.BuildDate,
	})
	if err != nil {
		logger.Error("Failed to create daemon", log.Error(err))
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := d.Start(ctx); err != nil {
		d.Logger().Error("Failed to start daemon", log.Error(err))
		return err
	}

	sig := <-sigCh
	d.Logger().Info("Received signal, shutting down", slog.String("signal", sig.String()))
	cancel()

	if err := d.Shutdown(context.Background()); err != nil {
		d.Logger().Error("Error during shutdown", log.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
