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
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestPIDFile_Acquire(t *testing.T) {
	t.Run("records exactly the decimal pid", func(t *testing.T) {
		pidPath := filepath.Join(t.TempDir(), "warden.pid")
		p := NewPIDFile(pidPath)
		defer p.Release()

		if err := p.Acquire(); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}

		data, err := os.ReadFile(pidPath)
		if err != nil {
			t.Fatalf("reading pid file: %v", err)
		}
		if got, want := string(data), strconv.Itoa(os.Getpid()); got != want {
			t.Errorf("pid file content = %q, want %q with no trailing bytes", got, want)
		}
	})

	t.Run("restrictive permissions", func(t *testing.T) {
		pidPath := filepath.Join(t.TempDir(), "warden.pid")
		p := NewPIDFile(pidPath)
		defer p.Release()

		if err := p.Acquire(); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}

		info, err := os.Stat(pidPath)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if mode := info.Mode() & os.ModePerm; mode != 0600 {
			t.Errorf("pid file mode = %04o, want 0600", mode)
		}
	})

	t.Run("second acquire fails while first holder is alive", func(t *testing.T) {
		pidPath := filepath.Join(t.TempDir(), "warden.pid")
		first := NewPIDFile(pidPath)
		second := NewPIDFile(pidPath)
		defer first.Release()

		if err := first.Acquire(); err != nil {
			t.Fatalf("first Acquire() error = %v", err)
		}

		if err := second.Acquire(); !errors.Is(err, ErrLocked) {
			t.Errorf("second Acquire() error = %v, want ErrLocked", err)
		}

		// The first holder's record must survive the failed attempt.
		pid, err := first.Read()
		if err != nil {
			t.Fatalf("Read() after contention error = %v", err)
		}
		if pid != os.Getpid() {
			t.Errorf("Read() = %d, want %d", pid, os.Getpid())
		}
	})

	t.Run("stale file without a lock is replaced", func(t *testing.T) {
		pidPath := filepath.Join(t.TempDir(), "warden.pid")
		if err := os.WriteFile(pidPath, []byte("99999\n"), 0600); err != nil {
			t.Fatalf("seeding stale file: %v", err)
		}

		p := NewPIDFile(pidPath)
		defer p.Release()

		if err := p.Acquire(); err != nil {
			t.Fatalf("Acquire() over stale file error = %v", err)
		}

		pid, err := p.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if pid != os.Getpid() {
			t.Errorf("Read() = %d, want current pid %d", pid, os.Getpid())
		}
	})

	t.Run("creates parent directory if missing", func(t *testing.T) {
		pidPath := filepath.Join(t.TempDir(), "nested", "run", "warden.pid")
		p := NewPIDFile(pidPath)
		defer p.Release()

		if err := p.Acquire(); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}

		info, err := os.Stat(filepath.Dir(pidPath))
		if err != nil {
			t.Fatalf("parent directory not created: %v", err)
		}
		if mode := info.Mode() & os.ModePerm; mode != 0700 {
			t.Errorf("parent directory mode = %04o, want 0700", mode)
		}
	})
}

func TestPIDFile_Release(t *testing.T) {
	t.Run("removes the file and frees the lock", func(t *testing.T) {
		pidPath := filepath.Join(t.TempDir(), "warden.pid")
		p := NewPIDFile(pidPath)

		if err := p.Acquire(); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		if err := p.Release(); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
		if p.Exists() {
			t.Error("pid file still exists after Release()")
		}

		// A new instance may take over immediately.
		next := NewPIDFile(pidPath)
		defer next.Release()
		if err := next.Acquire(); err != nil {
			t.Errorf("Acquire() after Release() error = %v", err)
		}
	})

	t.Run("reports but survives an externally removed file", func(t *testing.T) {
		pidPath := filepath.Join(t.TempDir(), "warden.pid")
		p := NewPIDFile(pidPath)

		if err := p.Acquire(); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		if err := os.Remove(pidPath); err != nil {
			t.Fatalf("removing pid file externally: %v", err)
		}

		// Cleanup failure is a warning condition, not a fatal one: the
		// caller logs the returned error and keeps shutting down.
		if err := p.Release(); err == nil {
			t.Error("Release() on a missing file returned nil, want error to warn about")
		}
	})
}

func TestPIDFile_Read(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("reads valid pid", func(t *testing.T) {
		pidPath := filepath.Join(tmpDir, "valid.pid")
		if err := os.WriteFile(pidPath, []byte("9999"), 0600); err != nil {
			t.Fatalf("seeding file: %v", err)
		}

		pid, err := NewPIDFile(pidPath).Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if pid != 9999 {
			t.Errorf("Read() = %d, want 9999", pid)
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := NewPIDFile(filepath.Join(tmpDir, "missing.pid")).Read()
		if !os.IsNotExist(err) {
			t.Errorf("Read() error = %v, want os.IsNotExist", err)
		}
	})

	t.Run("returns error for invalid content", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{"non-numeric", "not-a-number"},
			{"negative", "-123"},
			{"zero", "0"},
			{"empty", ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				pidPath := filepath.Join(tmpDir, tt.name+".pid")
				if err := os.WriteFile(pidPath, []byte(tt.content), 0600); err != nil {
					t.Fatalf("seeding file: %v", err)
				}

				_, err := NewPIDFile(pidPath).Read()
				if !errors.Is(err, ErrInvalidPID) {
					t.Errorf("Read() error = %v, want ErrInvalidPID", err)
				}
			})
		}
	})
}
