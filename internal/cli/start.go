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
	"github.com/spf13/cobra"
	"github.com/tombee/warden/internal/daemon"
)

// Start command flags
var (
	startForeground bool
	startPIDFile    string
	startInstanceID string
)

// NewStartCommand creates the start command
func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the warden daemon",
		Long: `Start the warden daemon.

By default the process stays in the foreground. With daemonize enabled
in the configuration, the command returns immediately and the daemon
keeps running in the background.`,
		Example: `  # Run in the foreground
  warden start --foreground

  # Run with an explicit PID file
  warden start --pid-file /run/warden.pid`,
		RunE: runStart,
	}

	cmd.Flags().BoolVar(&startForeground, "foreground", false, "Stay in the foreground even if the config enables daemonize")
	cmd.Flags().StringVar(&startPIDFile, "pid-file", "", "Path to the PID file (overrides config)")
	cmd.Flags().StringVar(&startInstanceID, "instance-id", "", "Instance identifier (overrides config)")

	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	v, c, b := GetVersion()
	return daemon.Run(daemon.RunOptions{
		Version:    v,
		Commit:     c,
		BuildDate:  b,
		ConfigPath: configPath(),
		PIDFile:    startPIDFile,
		InstanceID: startInstanceID,
		Foreground: startForeground,
	})
}
