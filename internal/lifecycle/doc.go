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

/*
Package lifecycle manages warden process lifecycle operations.

This package provides single-instance PID file enforcement, background
detachment, process validation/signaling, and a joinable worker spawn
primitive.

# PID File Management

The PID file is the single-instance gate: it holds an exclusive flock
for the whole process lifetime, so a second warden pointed at the same
path fails fast instead of sharing state the first instance assumes is
exclusive. A file left behind by an un-graceful death carries no live
lock and is replaced on the next start:

	pf := lifecycle.NewPIDFile("/run/warden.pid")
	if err := pf.Acquire(); err != nil {
	    // Fatal: another instance is alive, or the path is unusable.
	}
	defer pf.Release()

# Background Mode

Daemonize detaches the process from its controlling terminal. The Go
runtime cannot fork, so detachment re-executes the binary in a new
session and exits the foreground parent; only the detached copy returns
from the call. It must run before Acquire so the recorded PID is the
daemon's own.

# Workers

Spawn runs an entry point on its own, named OS thread and hands back a
joinable handle:

	w := lifecycle.Spawn("heartbeat", runHeartbeat)
	defer w.Join()
*/
package lifecycle
