// SPDX-License-Identifier: EPL-2.0

package audio

// RemapChannels reinterleaves frames of inCh-channel audio into outCh
// channels. The first min(inCh, outCh) channels of every frame are kept;
// extra output channels are silent, never duplicated from the source.
// dst is reused when it has room for frames*outCh samples.
func RemapChannels[T Sample](dst, src []T, frames, inCh, outCh int) []T {
	need := frames * outCh
	if cap(dst) < need {
		dst = make([]T, need)
	}
	dst = dst[:need]

	if inCh == outCh {
		copy(dst, src[:need])
		return dst
	}

	keep := min(inCh, outCh)

	switch {
	case inCh == 1 && outCh == 2:
		for f := range frames {
			dst[f<<1] = src[f]
			dst[f<<1+1] = 0
		}
	case inCh == 2 && outCh == 1:
		for f := range frames {
			dst[f] = src[f<<1]
		}
	default:
		for f := range frames {
			in := src[f*inCh : f*inCh+keep]
			out := dst[f*outCh : (f+1)*outCh]
			copy(out, in)
			for c := keep; c < outCh; c++ {
				out[c] = 0
			}
		}
	}

	return dst
}
