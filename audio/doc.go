// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks of the mixer.
//
// This package contains:
//   - the Sample constraint (int16 or float32) and conversions between them
//   - RemapChannels for channel count adaptation
//   - Resample, a stateless windowed-sinc sample rate converter
//   - the Source and Decoder interfaces and a format Registry
//
// # Sample Format
//
// Sources always produce interleaved float32 samples in [-1.0, 1.0]. Queues
// and output devices may carry int16 instead; the conversion scales by
// 32768 and saturates:
//
//	pcm := audio.FromFloat32[int16](nil, []float32{0.5, -1, 1})
//	// pcm == []int16{16384, -32768, 32767}
//
// Additive mixing uses Add, which saturates for int16 rather than wrapping.
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadFrames(dst []float32) (frames int, err error)
//	    Close() error
//	}
//
// ReadFrames returns whole frames. io.EOF marks the end of the stream and may
// arrive together with the last frames.
//
// # Resampling
//
// Resample converts a single chunk. It keeps no history between calls, and
// the output length is always ResampledFrames(frames, inRate, outRate):
//
//	out := audio.Resample(out, chunk, frames, channels, 44100, 48000)
//
// Equal rates are a plain copy. Pass the previous result back as dst to
// avoid allocating.
//
// # Channel Remapping
//
// RemapChannels keeps the leading channels and zero fills the rest. Mono is
// not duplicated into stereo, and stereo is not averaged into mono:
//
//	stereo := audio.RemapChannels(nil, mono, frames, 1, 2)
//	// left = mono, right = silence
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.ForPath("music/intro.WAV")
package audio
