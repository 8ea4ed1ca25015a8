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

//go:build !trace

package trace

// Enabled reports whether trace emission is compiled in.
const Enabled = false

// Trace is a no-op without the trace build tag.
func (t *Tracer) Trace(Class, string, ...any) {}

// Errno is a no-op without the trace build tag.
func (t *Tracer) Errno(error) bool { return false }
