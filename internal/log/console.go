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

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tombee/warden/internal/tty"
)

// Level label colors. Bug additionally renders bold to stand out.
var (
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))  // green
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	styleBug     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleDebug   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
)

// consoleHandler emits one line per record:
//
//	[YYYY/MM/DD HH:MM:SS] [<level>] message key=value ...
//
// The level label is right-justified to 7 characters. ANSI colors are
// applied only when the output is an interactive terminal. Writes are
// best-effort: errors are swallowed so logging can never crash a caller.
type consoleHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	color bool
	attrs string
	group string
}

func newConsoleHandler(w io.Writer, level slog.Leveler) *consoleHandler {
	return &consoleHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		color: tty.IsWriterTTY(w),
	}
}

// Enabled implements slog.Handler.
func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler. It never returns an error.
func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	label, style := levelLabel(r.Level)

	var sb strings.Builder

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	stamp := ts.Format("2006/01/02 15:04:05")

	if h.color {
		sb.WriteString(styleBold.Render("[") + stamp + styleBold.Render("]"))
		sb.WriteString(" ")
		sb.WriteString(styleBold.Render("[") + style.Render(fmt.Sprintf("%7s", label)) + styleBold.Render("]"))
	} else {
		fmt.Fprintf(&sb, "[%s] [%7s]", stamp, label)
	}

	sb.WriteString(" ")
	sb.WriteString(r.Message)
	sb.WriteString(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, h.group, a)
		return true
	})

	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	if r.Level >= LevelBug {
		// Best-effort stack dump, debug builds only.
		if stack := stackDump(); len(stack) > 0 {
			h.w.Write(stack) //nolint:errcheck // diagnostics never fail the caller
		}
	}
	h.w.Write([]byte(sb.String())) //nolint:errcheck // diagnostics never fail the caller
	return nil
}

// WithAttrs implements slog.Handler.
func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&sb, h.group, a)
	}
	clone.attrs = sb.String()
	return &clone
}

// WithGroup implements slog.Handler.
func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group == "" {
		clone.group = name
	} else {
		clone.group = h.group + "." + name
	}
	return &clone
}

func appendAttr(sb *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	fmt.Fprintf(sb, " %s=%v", key, a.Value.Resolve())
}

// levelLabel maps a slog level to its console label and color.
func levelLabel(level slog.Level) (string, lipgloss.Style) {
	switch {
	case level >= LevelBug:
		return "BUG !", styleBug
	case level >= slog.LevelError:
		return "Error", styleError
	case level >= slog.LevelWarn:
		return "Warning", styleWarning
	case level >= slog.LevelInfo:
		return "Info", styleInfo
	default:
		return "Debug", styleDebug
	}
}
