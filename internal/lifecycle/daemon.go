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

package lifecycle

import (
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	internallog "github.com/tombee/warden/internal/log"
	"golang.org/x/sys/unix"
)

// Mark of the detached daemon copy, set in its environment by the
// foreground parent.
const (
	backgroundEnv  = "WARDEN_BACKGROUND"
	backgroundMark = "1"
)

// osExit is swapped out in tests. Daemonization failures terminate the
// process: there is no recoverable state between "detached" and "not".
var osExit = os.Exit

// InBackground returns true in the detached daemon copy and false in
// the original foreground process.
func InBackground() bool {
	return os.Getenv(backgroundEnv) == backgroundMark
}

// Daemonizer detaches the process from its controlling terminal and
// session so it keeps running independent of the launching shell.
type Daemonizer struct {
	logger *slog.Logger
}

// NewDaemonizer creates a Daemonizer logging through the given logger.
func NewDaemonizer(logger *slog.Logger) *Daemonizer {
	return &Daemonizer{logger: logger}
}

// Daemonize switches the process into background mode. The Go runtime
// cannot fork, so the foreground invocation re-executes itself detached
// (new session, marked environment) and exits successfully; only the
// detached copy returns from this call, after resetting its umask,
// moving to the filesystem root, and closing stdout/stderr. Every
// failure in the sequence is fatal.
//
// Daemonize must run before the PID file is recorded so the PID written
// there is the daemon's own.
func (d *Daemonizer) Daemonize() {
	if !InBackground() {
		d.respawn()
		return // reached only in tests with a stubbed exit
	}
	d.detach()
}

// respawn starts the detached copy and terminates the foreground
// process. stdout/stderr are inherited so the copy's final messages
// still reach the launching terminal before it closes them.
func (d *Daemonizer) respawn() {
	exe, err := os.Executable()
	if err != nil {
		d.logger.Error("failed to switch to background mode: cannot resolve executable", internallog.Error(err))
		osExit(1)
		return
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), backgroundEnv+"="+backgroundMark)
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// New session: no controlling terminal for the copy.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		d.logger.Error("failed to switch to background mode", internallog.Error(err))
		osExit(1)
		return
	}
	cmd.Process.Release() //nolint:errcheck // the copy is already detached

	// The foreground invocation's job is done.
	osExit(0)
}

// detach completes backgrounding inside the daemon copy.
func (d *Daemonizer) detach() {
	unix.Umask(0)

	// Make sure we are not pinning an unmountable filesystem.
	if err := os.Chdir("/"); err != nil {
		d.logger.Error("failed to change working directory to /", internallog.Error(err))
		osExit(1)
		return
	}

	// Last message to the inherited stdout.
	d.logger.Info("Background mode ON")

	os.Stdout.Close()
	os.Stderr.Close()
}
