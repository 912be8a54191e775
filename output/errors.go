// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

var (
	ErrInvalidConfig = errors.New("output needs a positive sample rate, channel count and period")
	ErrNoDevice      = errors.New("audio device output is not available in this build")
	ErrClosed        = errors.New("output driver is closed")
)
