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

//go:build trace

package trace

// Enabled reports whether trace emission is compiled in. Hot call sites
// can guard expensive argument construction with it; the constant lets
// the compiler drop the guarded block entirely in non-trace builds.
const Enabled = true

// Trace emits one diagnostic line attributed to the calling source
// location. The filter and theme applied are the ones captured when the
// Tracer was constructed.
func (t *Tracer) Trace(class Class, format string, args ...any) {
	t.emit(class, 2, format, args...)
}

// Errno traces the symbolic name of an OS error code and reports
// whether the code is one of the recognized failure conditions.
// Unrecognized codes trace as unknown and report false (a neutral
// outcome). The return value is advisory only.
func (t *Tracer) Errno(err error) bool {
	name, known := classifyErrno(err)
	t.emit(ClassCore, 2, "errno: %s", name)
	return known
}
