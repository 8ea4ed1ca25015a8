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

package trace

import (
	"errors"
	"syscall"
)

// classifyErrno maps the recognized OS error codes to their symbolic
// names. Recognized codes are failure outcomes; anything else (including
// non-errno errors) classifies as unknown with a neutral outcome.
func classifyErrno(err error) (name string, known bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return "unknown", false
	}

	switch errno {
	case syscall.EAGAIN:
		return "EAGAIN", true
	case syscall.EBADF:
		return "EBADF", true
	case syscall.EFAULT:
		return "EFAULT", true
	case syscall.EFBIG:
		return "EFBIG", true
	case syscall.EINTR:
		return "EINTR", true
	case syscall.EINVAL:
		return "EINVAL", true
	case syscall.EPIPE:
		return "EPIPE", true
	default:
		return "unknown", false
	}
}
