/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package kernel

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

// The kernel's error taxonomy is closed: these are the only values that may
// appear as a Response's negative result code. Each wraps the nearest
// errdefs classification so callers can match on either the specific
// sentinel or the generic class.
var (
	ErrProcessNotFound   = fmt.Errorf("process not found: %w", errdefs.ErrNotFound)
	ErrEndpointNotFound  = fmt.Errorf("endpoint not found: %w", errdefs.ErrNotFound)
	ErrInvalidCapability = fmt.Errorf("invalid capability: %w", errdefs.ErrNotFound)
	ErrPermissionDenied  = fmt.Errorf("permission denied: %w", errdefs.ErrPermissionDenied)
	ErrWouldBlock        = fmt.Errorf("would block: %w", errdefs.ErrUnavailable)
	ErrOutOfMemory       = fmt.Errorf("out of memory: %w", errdefs.ErrResourceExhausted)
	ErrInvalidArgument   = fmt.Errorf("invalid argument: %w", errdefs.ErrInvalidArgument)
)

// ResultCode maps a kernel error onto the negative result-code space a
// syscall response carries. Zero and positive codes are success values;
// negative codes are drawn from this fixed table.
func ResultCode(err error) int64 {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrProcessNotFound):
		return -1
	case errors.Is(err, ErrEndpointNotFound):
		return -2
	case errors.Is(err, ErrInvalidCapability):
		return -3
	case errors.Is(err, ErrPermissionDenied):
		return -4
	case errors.Is(err, ErrWouldBlock):
		return -5
	case errors.Is(err, ErrOutOfMemory):
		return -6
	case errors.Is(err, ErrInvalidArgument):
		return -7
	default:
		return -8
	}
}
