// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"sync"

	"github.com/ik5/audmix/utils"
)

const (
	// Kernel half-width in zero crossings of the sinc.
	sincZeroCrossings = 32
	// Table points per zero crossing.
	sincOversample = 256
	kaiserBeta     = 9.0
)

var (
	kernelOnce  sync.Once
	kernelTable []float32
)

// ResampledFrames returns the number of frames a chunk of frames at inRate
// occupies at outRate: round(frames * outRate / inRate).
func ResampledFrames(frames, inRate, outRate int) int {
	if inRate == outRate || inRate <= 0 {
		return frames
	}

	return int(math.Round(float64(frames) * float64(outRate) / float64(inRate)))
}

// Resample converts frames of interleaved audio from inRate to outRate using
// a Kaiser-windowed sinc kernel. The result has ResampledFrames(frames,
// inRate, outRate) frames and reuses dst when it is large enough.
//
// Every call is independent: no filter history is carried between chunks,
// and samples past either edge of the chunk repeat the edge frame. Chunk
// boundaries therefore are not sample-exact continuations of each other.
func Resample(dst, src []float32, frames, channels, inRate, outRate int) []float32 {
	outFrames := ResampledFrames(frames, inRate, outRate)
	need := outFrames * channels
	if cap(dst) < need {
		dst = make([]float32, need)
	}
	dst = dst[:need]

	if inRate == outRate {
		copy(dst, src[:need])
		return dst
	}
	if frames == 0 || outFrames == 0 {
		return dst
	}

	table := kernel()

	step := float64(inRate) / float64(outRate) // input frames per output frame
	cutoff := 1.0
	if step > 1 {
		// Downsampling: move the cutoff to the output Nyquist frequency.
		cutoff = 1 / step
	}
	halfWidth := sincZeroCrossings / cutoff
	last := frames - 1

	for j := range outFrames {
		t := float64(j) * step
		lo := int(math.Ceil(t - halfWidth))
		hi := int(math.Floor(t + halfWidth))

		out := dst[j*channels : (j+1)*channels]
		for c := range out {
			out[c] = 0
		}

		var wsum float32
		for k := lo; k <= hi; k++ {
			w := kernelAt(table, math.Abs(t-float64(k))*cutoff)
			if w == 0 {
				continue
			}

			idx := k
			if idx < 0 {
				idx = 0
			} else if idx > last {
				idx = last
			}

			in := src[idx*channels : (idx+1)*channels]
			for c := range out {
				out[c] += w * in[c]
			}
			wsum += w
		}

		if wsum != 0 {
			inv := 1 / wsum
			for c := range out {
				out[c] *= inv
			}
		}
	}

	return dst
}

// kernelAt evaluates the tabulated kernel at u zero crossings from center.
func kernelAt(table []float32, u float64) float32 {
	return utils.EvenTableAt(table, u*sincOversample)
}

func kernel() []float32 {
	kernelOnce.Do(func() {
		n := sincZeroCrossings * sincOversample
		t := make([]float32, n+1)
		norm := besselI0(kaiserBeta)

		for i := 0; i <= n; i++ {
			x := float64(i) / sincOversample
			r := x / sincZeroCrossings
			w := besselI0(kaiserBeta*math.Sqrt(1-r*r)) / norm
			t[i] = float32(sinc(x) * w)
		}

		kernelTable = t
	})

	return kernelTable
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x

	return math.Sin(px) / px
}

// besselI0 is the zeroth-order modified Bessel function of the first kind.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	half := x / 2
	for k := 1; k < 64; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < sum*1e-12 {
			break
		}
	}

	return sum
}
