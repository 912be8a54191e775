// SPDX-License-Identifier: EPL-2.0

package audmix

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrStopped       = errors.New("mixer is stopped")
	ErrRunning       = errors.New("mixer is already running")
	ErrUnknownSource = errors.New("no source with that name")
	ErrUnknownOutput = errors.New("unknown output backend")
)
