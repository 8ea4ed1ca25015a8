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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

var (
	// ErrLocked is returned when another live process holds the PID file lock.
	ErrLocked = errors.New("pid file is locked by another process")

	// ErrInvalidPID is returned when the PID file contains invalid data.
	ErrInvalidPID = errors.New("invalid pid in file")
)

// PIDFile owns the exclusive on-disk record of the running instance.
//
// Acquire holds an exclusive advisory flock on the file for the whole
// process lifetime; the open descriptor is the liveness signal. If the
// process dies without releasing, the kernel drops the lock when the
// descriptor table is torn down, so the leftover file is recognizably
// stale on the next start.
type PIDFile struct {
	path string
	f    *os.File
}

// NewPIDFile creates a PID file manager for the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the managed path.
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire establishes the single-instance lock and records the current
// process ID. A pre-existing file is probed first: if its lock is still
// held the owner is alive and Acquire fails with ErrLocked; otherwise
// the file is a stale artifact of an abnormal termination and is
// replaced. The fresh file is created with restrictive permissions
// (close-on-exec comes with os.OpenFile) and keeps its descriptor open
// so the lock persists until Release or process death.
//
// There is a narrow window between unlinking a stale file and locking
// the fresh one; O_EXCL makes a concurrent creator fail fast there
// rather than letting two instances both believe they won.
func (p *PIDFile) Acquire() error {
	if err := p.replaceStale(); err != nil {
		return err
	}

	// Create parent directory if needed with restrictive permissions.
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return fmt.Errorf("creating pid file directory: %w", err)
	}

	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return ErrLocked
		}
		return fmt.Errorf("creating pid file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return ErrLocked
		}
		return fmt.Errorf("locking pid file: %w", err)
	}

	// Exactly the decimal digits, no trailing newline: downstream
	// tooling reads the file verbatim.
	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		f.Close()
		os.Remove(p.path)
		return fmt.Errorf("writing pid: %w", err)
	}

	p.f = f
	return nil
}

// replaceStale probes any existing file at the path. A held lock means a
// live instance owns it; an acquirable lock means the file is stale and
// gets unlinked so Acquire can start fresh.
func (p *PIDFile) replaceStale() error {
	old, err := os.OpenFile(p.path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("probing existing pid file: %w", err)
	}
	defer old.Close()

	if err := unix.Flock(int(old.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if err == unix.EWOULDBLOCK {
			return ErrLocked
		}
		return fmt.Errorf("probing existing pid file lock: %w", err)
	}

	if err := os.Remove(p.path); err != nil {
		return fmt.Errorf("removing stale pid file: %w", err)
	}
	return nil
}

// Release drops the lock and unlinks the path. It is the explicit
// shutdown hook for the descriptor Acquire deliberately left open.
// An unlink failure is reported but is a housekeeping problem only:
// callers log it as a warning and keep shutting down.
func (p *PIDFile) Release() error {
	if p.f != nil {
		unix.Flock(int(p.f.Fd()), unix.LOCK_UN)
		p.f.Close()
		p.f = nil
	}

	if err := os.Remove(p.path); err != nil {
		return fmt.Errorf("removing pid file: %w", err)
	}
	return nil
}

// Read reads the recorded PID from the file.
// Returns ErrInvalidPID if the file contains non-numeric data.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, err
		}
		return 0, fmt.Errorf("reading pid file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPID, pidStr)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("%w: pid must be positive, got %d", ErrInvalidPID, pid)
	}

	return pid, nil
}

// Exists returns true if the PID file exists.
func (p *PIDFile) Exists() bool {
	_, err := os.Stat(p.path)
	return err == nil
}
