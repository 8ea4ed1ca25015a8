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

// Package clock records the process start epoch.
//
// The epoch is the relative-time base for trace output and uptime
// reporting. It is captured once at process startup and never mutated.
package clock

import "time"

// Clock holds the wall-clock timestamp captured at process init.
// All relative timestamps are computed against it.
type Clock struct {
	start time.Time
}

// Start captures the current wall-clock time as the process epoch.
// Call it once, before any trace call.
func Start() *Clock {
	return &Clock{start: time.Now()}
}

// At returns a Clock with an explicit epoch. Used in tests.
func At(start time.Time) *Clock {
	return &Clock{start: start}
}

// StartTime returns the recorded process epoch.
func (c *Clock) StartTime() time.Time {
	return c.start
}

// Elapsed returns the wall-clock time since the process epoch.
func (c *Clock) Elapsed() time.Duration {
	return time.Since(c.start)
}
