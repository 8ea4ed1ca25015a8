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

// Package trace is the fine-grained runtime diagnostic emitter.
//
// Trace lines carry the elapsed time since process start, the emitting
// subsystem, the source location, and a formatted message:
//
//	~  3.014522 [core|pidfile.go:87 ] Acquire() lock established
//
// Emission is compiled in only under the trace build tag; without it
// every Trace call is an empty function. A filter substring read once
// from WARDEN_TRACE_FILTER restricts output to matching source files,
// and WARDEN_TRACE_BACKGROUND selects the light or dark color palette.
// A process-wide mutex keeps concurrent trace lines from interleaving.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tombee/warden/internal/clock"
	"github.com/tombee/warden/internal/tty"
)

// Environment variables consulted once at Tracer construction.
const (
	// FilterEnv holds a substring (or path fragment); trace calls whose
	// source file does not contain it are dropped before any locking.
	FilterEnv = "WARDEN_TRACE_FILTER"

	// BackgroundEnv selects the palette: "light", with anything else
	// (including unset) defaulting to "dark".
	BackgroundEnv = "WARDEN_TRACE_BACKGROUND"
)

// Class identifies the subsystem emitting a trace line. Each class has
// its own palette so subsystems are distinguishable at a glance.
type Class int

const (
	// ClassCore tags trace output from the core lifecycle layer.
	ClassCore Class = iota
	// ClassPlugin tags trace output from plugin call sites.
	ClassPlugin
)

func (c Class) tag() string {
	switch c {
	case ClassPlugin:
		return "plugin"
	default:
		return "core"
	}
}

// palette is the per-class style set for one background theme.
type palette struct {
	component lipgloss.Style
	function  lipgloss.Style
	fileline  lipgloss.Style
}

var (
	styleElapsed = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan

	darkPalettes = map[Class]palette{
		ClassCore: {
			component: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
			function:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			fileline:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true),
		},
		ClassPlugin: {
			component: lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
			function:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
			fileline:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true),
		},
	}

	lightPalettes = map[Class]palette{
		ClassCore: {
			component: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
			function:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
			fileline:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		},
		ClassPlugin: {
			component: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
			function:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
			fileline:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		},
	}
)

// Tracer serializes diagnostic output from concurrent callers.
// Filter and theme are read once at construction and immutable after.
type Tracer struct {
	mu       sync.Mutex
	out      io.Writer
	clk      *clock.Clock
	filter   string
	color    bool
	palettes map[Class]palette
}

// New creates a Tracer writing to stdout. clk must be the process clock
// started at init; trace timestamps are relative to it.
func New(clk *clock.Clock) *Tracer {
	return newTracer(clk, os.Stdout, os.Getenv(FilterEnv), os.Getenv(BackgroundEnv), tty.IsTTY())
}

func newTracer(clk *clock.Clock, out io.Writer, filter, background string, color bool) *Tracer {
	palettes := darkPalettes
	if background == "light" {
		palettes = lightPalettes
	}
	return &Tracer{
		out:      out,
		clk:      clk,
		filter:   filter,
		color:    color,
		palettes: palettes,
	}
}

// emit writes one trace line for the caller skip frames up the stack.
// The filter check runs before the mutex is taken so filtered-out call
// sites cost a Caller lookup and nothing more.
func (t *Tracer) emit(class Class, skip int, format string, args ...any) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return
	}

	if t.filter != "" && !strings.Contains(file, t.filter) {
		return
	}

	function := "?"
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
		if idx := strings.LastIndex(function, "."); idx >= 0 {
			function = function[idx+1:]
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.clk.Elapsed()
	secs := int64(elapsed / time.Second)
	micros := elapsed.Microseconds() % 1e6
	stamp := fmt.Sprintf("%2d.%06d", secs, micros)
	location := fmt.Sprintf("%s:%-3d", filepath.Base(file), line)
	message := fmt.Sprintf(format, args...)

	if t.color {
		p := t.palettes[class]
		fmt.Fprintf(t.out, "~ %s [%s|%s] %s %s\n",
			styleElapsed.Render(stamp),
			p.component.Render(class.tag()),
			p.fileline.Render(location),
			p.function.Render(function+"()"),
			message)
		return
	}

	fmt.Fprintf(t.out, "~ %s [%s|%s] %s() %s\n", stamp, class.tag(), location, function, message)
}
