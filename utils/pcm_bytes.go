// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"math"
)

// DecodeS16 converts 16-bit signed samples in the given byte order to
// normalized float32, reusing dst when it is large enough. A trailing odd
// byte is ignored.
func DecodeS16(dst []float32, b []byte, order binary.ByteOrder) []float32 {
	n := len(b) / 2
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for i := range dst {
		dst[i] = Int16ToFloat32(int16(order.Uint16(b[2*i:])))
	}

	return dst
}

// DecodeF32LE converts little-endian IEEE 754 samples to float32, reusing
// dst when it is large enough.
func DecodeF32LE(dst []float32, b []byte) []float32 {
	n := len(b) / 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}

	return dst
}
