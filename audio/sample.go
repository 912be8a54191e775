// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	"github.com/ik5/audmix/utils"
)

// Sample is the set of PCM representations a queue can carry: 16-bit
// signed integers or 32-bit floats in [-1, 1]. The set is exact, so named
// types built on top of int16 or float32 are rejected at compile time.
type Sample interface {
	int16 | float32
}

// IsInteger reports whether T is the 16-bit integer representation.
func IsInteger[T Sample]() bool {
	var x T = 1
	x /= 2

	return x == 0
}

// BytesPerSample returns the encoded size of one T.
func BytesPerSample[T Sample]() int {
	if IsInteger[T]() {
		return 2
	}

	return 4
}

// Add sums two samples. int16 sums saturate instead of wrapping.
func Add[T Sample](a, b T) T {
	if !IsInteger[T]() {
		return a + b
	}

	s := int32(a) + int32(b)
	if s > math.MaxInt16 {
		s = math.MaxInt16
	} else if s < math.MinInt16 {
		s = math.MinInt16
	}

	return T(s)
}

// ToFloat32 converts src into normalized float32 samples, reusing dst when
// it is large enough.
func ToFloat32[T Sample](dst []float32, src []T) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]

	if !IsInteger[T]() {
		for i, v := range src {
			dst[i] = float32(v)
		}
		return dst
	}

	for i, v := range src {
		dst[i] = utils.Int16ToFloat32(int16(v))
	}

	return dst
}

// FromFloat32 converts normalized float32 samples into T, reusing dst when
// it is large enough. Integer output is clamped.
func FromFloat32[T Sample](dst []T, src []float32) []T {
	if cap(dst) < len(src) {
		dst = make([]T, len(src))
	}
	dst = dst[:len(src)]

	if !IsInteger[T]() {
		for i, v := range src {
			dst[i] = T(v)
		}
		return dst
	}

	for i, v := range src {
		dst[i] = T(utils.Float32ToInt16(v))
	}

	return dst
}
