// SPDX-License-Identifier: EPL-2.0

package queue

import "errors"

var (
	ErrInvalidCapacity = errors.New("queue capacity must be a positive number of frames")
	ErrInvalidFormat   = errors.New("queue sample rate and channels must be positive")
	ErrInvalidMin      = errors.New("queue priming threshold must be between 0 and capacity")
)
