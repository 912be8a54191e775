// SPDX-License-Identifier: EPL-2.0

//go:build headless

package output

import (
	"go.uber.org/zap"

	"github.com/ik5/audmix/audio"
)

// Oto is unavailable in headless builds.
type Oto[T audio.Sample] struct{}

// NewOto always fails with ErrNoDevice in headless builds.
func NewOto[T audio.Sample](Config, Drainer[T], *zap.Logger) (*Oto[T], error) {
	return nil, ErrNoDevice
}

func (*Oto[T]) Start() error  { return ErrNoDevice }
func (*Oto[T]) Pause() error  { return ErrNoDevice }
func (*Oto[T]) Playing() bool { return false }
func (*Oto[T]) Close() error  { return nil }
