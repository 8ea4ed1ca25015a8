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

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tombee/warden/internal/config"
	"github.com/tombee/warden/internal/lifecycle"
)

// Stop command flags
var (
	stopPIDFile string
	stopTimeout time.Duration
	stopForce   bool
)

// NewStopCommand creates the stop command
func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running warden daemon",
		Long: `Stop the running warden daemon.

The daemon is located through its PID file and asked to shut down with
SIGTERM. With --force, a daemon that does not exit within the timeout
is killed.`,
		RunE: runStop,
	}

	cmd.Flags().StringVar(&stopPIDFile, "pid-file", "", "Path to the PID file (overrides config)")
	cmd.Flags().DurationVar(&stopTimeout, "timeout", 10*time.Second, "How long to wait for the daemon to exit")
	cmd.Flags().BoolVar(&stopForce, "force", false, "Kill the daemon if it does not exit within the timeout")

	return cmd
}

func runStop(cmd *cobra.Command, args []string) error {
	pidPath, err := resolvePIDFile(stopPIDFile)
	if err != nil {
		return err
	}

	pidFile := lifecycle.NewPIDFile(pidPath)
	if !pidFile.Exists() {
		cmd.Println(Muted.Render("warden is not running (no PID file at " + pidPath + ")"))
		return nil
	}

	pid, err := pidFile.Read()
	if err != nil {
		return fmt.Errorf("unreadable PID file %s: %w", pidPath, err)
	}

	if !lifecycle.IsProcessRunning(pid) {
		cmd.Println(Muted.Render(fmt.Sprintf("stale PID file: no process with pid %d, removing %s", pid, pidPath)))
		return os.Remove(pidPath)
	}

	if !lifecycle.IsWardenProcess(pid) {
		return fmt.Errorf("pid %d from %s is not a warden process, refusing to signal it", pid, pidPath)
	}

	cmd.Printf("Stopping warden (pid %d)...\n", pid)
	if err := lifecycle.GracefulShutdown(pid, stopTimeout, stopForce); err != nil {
		return fmt.Errorf("failed to stop warden: %w", err)
	}

	cmd.Println(RenderOK("warden stopped"))
	return nil
}

// resolvePIDFile picks the PID file path: flag first, then config.
func resolvePIDFile(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := config.Load(configPath())
	if err != nil {
		return "", err
	}
	return cfg.PIDFile, nil
}
