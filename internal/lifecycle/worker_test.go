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
	"sync/atomic"
	"testing"
	"time"
)

func TestSpawn(t *testing.T) {
	t.Run("runs the body and Join waits for it", func(t *testing.T) {
		var ran atomic.Bool
		w := Spawn("heartbeat", func() {
			time.Sleep(10 * time.Millisecond)
			ran.Store(true)
		})

		w.Join()
		if !ran.Load() {
			t.Error("Join() returned before the worker body completed")
		}
	})

	t.Run("Join is idempotent", func(t *testing.T) {
		w := Spawn("idle", func() {})
		w.Join()
		w.Join()
	})

	t.Run("Done closes when the worker exits", func(t *testing.T) {
		release := make(chan struct{})
		w := Spawn("gated", func() { <-release })

		select {
		case <-w.Done():
			t.Fatal("Done() closed while the worker was still running")
		case <-time.After(20 * time.Millisecond):
		}

		close(release)
		select {
		case <-w.Done():
		case <-time.After(time.Second):
			t.Fatal("Done() did not close after the worker exited")
		}
	})

	t.Run("reports its name", func(t *testing.T) {
		w := Spawn("logger-flush", func() {})
		w.Join()
		if got := w.Name(); got != "logger-flush" {
			t.Errorf("Name() = %q, want %q", got, "logger-flush")
		}
	})

	t.Run("workers run concurrently", func(t *testing.T) {
		var count atomic.Int32
		workers := make([]*Worker, 4)
		gate := make(chan struct{})
		for i := range workers {
			workers[i] = Spawn("parallel", func() {
				count.Add(1)
				<-gate
			})
		}

		deadline := time.After(time.Second)
		for count.Load() != 4 {
			select {
			case <-deadline:
				t.Fatalf("only %d of 4 workers started", count.Load())
			case <-time.After(time.Millisecond):
			}
		}

		close(gate)
		for _, w := range workers {
			w.Join()
		}
	})
}
