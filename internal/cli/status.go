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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tombee/warden/internal/lifecycle"
)

// Status command flags
var (
	statusPIDFile string
)

// StatusInfo describes the daemon's state for status output.
type StatusInfo struct {
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	PIDFile string `json:"pid_file"`
	Stale   bool   `json:"stale,omitempty"`
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the warden daemon is running",
		RunE:  runStatus,
	}

	cmd.Flags().StringVar(&statusPIDFile, "pid-file", "", "Path to the PID file (overrides config)")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	pidPath, err := resolvePIDFile(statusPIDFile)
	if err != nil {
		return err
	}

	info := StatusInfo{PIDFile: pidPath}

	pidFile := lifecycle.NewPIDFile(pidPath)
	if pidFile.Exists() {
		pid, readErr := pidFile.Read()
		if readErr == nil {
			info.PID = pid
			info.Running = lifecycle.IsProcessRunning(pid) && lifecycle.IsWardenProcess(pid)
			info.Stale = !info.Running
		} else {
			info.Stale = true
		}
	}

	if jsonFlag {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	switch {
	case info.Running:
		cmd.Printf("%s %s\n", RenderStatus(true, "running"), Bold.Render(fmt.Sprintf("pid %d", info.PID)))
	case info.Stale:
		cmd.Printf("%s %s\n", RenderStatus(false, "stopped"), Muted.Render("stale PID file at "+pidPath))
	default:
		cmd.Println(RenderStatus(false, "stopped"))
	}
	cmd.Printf("%s %s\n", RenderLabel("pid file:"), pidPath)

	return nil
}
