// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 converts a normalized sample to 16-bit PCM.
// Input is clamped to [-1, 1] and scaled by 32768, so -1 maps to
// math.MinInt16 and 1 saturates at math.MaxInt16.
func Float32ToInt16(x float32) int16 {
	v := x * 32768.0
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}

	return int16(v)
}

// Int16ToFloat32 is the inverse of Float32ToInt16.
func Int16ToFloat32(x int16) float32 {
	return float32(x) / 32768.0
}
