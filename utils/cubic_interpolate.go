// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at x,
// the fractional position between y1 (x=0) and y2 (x=1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}

// EvenTableAt reads the even function tabulated in table at fractional
// index pos (pos >= 0), interpolating between entries. table[0] is the
// value at zero; entries below zero mirror the positive side and entries
// past the end are zero.
func EvenTableAt(table []float32, pos float64) float32 {
	i := int(pos)
	if i >= len(table) {
		return 0
	}

	at := func(j int) float32 {
		if j < 0 {
			j = -j
		}
		if j >= len(table) {
			return 0
		}
		return table[j]
	}

	return CubicInterpolate(at(i-1), table[i], at(i+1), at(i+2), float32(pos-float64(i)))
}
