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

import "runtime"

// Worker is a joinable handle to a named background worker. The caller
// owns the handle and is responsible for joining it; this layer does no
// further tracking.
type Worker struct {
	name string
	done chan struct{}
}

// Spawn runs fn on its own dedicated OS thread and returns a joinable
// handle. On Linux the thread is renamed to name (best-effort) so
// workers are identifiable in ps/top output. The thread is torn down
// when fn returns.
func Spawn(name string, fn func()) *Worker {
	w := &Worker{
		name: name,
		done: make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		// Pin to a thread so the name sticks to this worker and fn gets
		// an independently scheduled execution context.
		runtime.LockOSThread()
		setThreadName(name)
		fn()
	}()

	return w
}

// Name returns the worker name given at spawn.
func (w *Worker) Name() string {
	return w.name
}

// Join blocks until the worker's entry point has returned.
func (w *Worker) Join() {
	<-w.done
}

// Done returns a channel closed when the worker exits, for callers that
// want to select on completion instead of blocking in Join.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
