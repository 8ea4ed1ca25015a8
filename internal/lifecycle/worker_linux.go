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

//go:build linux

package lifecycle

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// threadNameMax is the kernel limit for thread names, excluding the
// terminating NUL.
const threadNameMax = 15

// setThreadName renames the calling thread via prctl(PR_SET_NAME).
// Best-effort: failures are ignored, the name is cosmetic.
func setThreadName(name string) {
	if len(name) > threadNameMax {
		name = name[:threadNameMax]
	}
	b, err := unix.BytePtrFromString(name)
	if err != nil {
		return
	}
	unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(b)), 0, 0, 0) //nolint:errcheck
}
