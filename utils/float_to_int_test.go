// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float32
		want int16
	}{
		{in: 0, want: 0},
		{in: 0.5, want: 16384},
		{in: -0.5, want: -16384},
		{in: 0.25, want: 8192},
		{in: 1.0 / 32768, want: 1},
		{in: -1, want: math.MinInt16},
		{in: 1, want: math.MaxInt16},
		{in: 1.7, want: math.MaxInt16},
		{in: -3, want: math.MinInt16},
	}

	for _, tt := range tests {
		if got := Float32ToInt16(tt.in); got != tt.want {
			t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFloat32ToInt16_NaNIsFinite(t *testing.T) {
	t.Parallel()

	// NaN fails both clamps; the conversion must still yield some int16
	// rather than panic.
	_ = Float32ToInt16(float32(math.NaN()))
}

func TestInt16ToFloat32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int16
		want float32
	}{
		{in: 0, want: 0},
		{in: 16384, want: 0.5},
		{in: -16384, want: -0.5},
		{in: math.MinInt16, want: -1},
		{in: math.MaxInt16, want: 32767.0 / 32768},
	}

	for _, tt := range tests {
		if got := Int16ToFloat32(tt.in); got != tt.want {
			t.Errorf("Int16ToFloat32(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInt16RoundTrip(t *testing.T) {
	t.Parallel()

	for v := math.MinInt16; v <= math.MaxInt16; v += 97 {
		got := Float32ToInt16(Int16ToFloat32(int16(v)))
		if got != int16(v) {
			t.Fatalf("round trip of %d gave %d", v, got)
		}
	}
}

func TestFloat32ToInt16_Monotonic(t *testing.T) {
	t.Parallel()

	prev := Float32ToInt16(-1.5)
	for x := float32(-1.5); x <= 1.5; x += 0.001 {
		got := Float32ToInt16(x)
		if got < prev {
			t.Fatalf("Float32ToInt16(%v) = %d is below the previous %d", x, got, prev)
		}
		prev = got
	}
}

func TestConversion_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	in := make([]float32, 1024)
	out := make([]int16, 1024)

	allocs := testing.AllocsPerRun(100, func() {
		for i := range in {
			out[i] = Float32ToInt16(in[i])
			in[i] = Int16ToFloat32(out[i])
		}
	})

	if allocs > 0 {
		t.Errorf("conversion allocated %v times, want 0", allocs)
	}
}

func BenchmarkFloat32ToInt16(b *testing.B) {
	in := make([]float32, 882) // one 10 ms stereo period at 44.1 kHz
	for i := range in {
		in[i] = float32(math.Sin(float64(i) * 0.05))
	}
	out := make([]int16, len(in))

	b.ReportAllocs()
	for b.Loop() {
		for i, v := range in {
			out[i] = Float32ToInt16(v)
		}
	}
}
