// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files, Apple's
// big-endian PCM container. Supported:
//   - 8, 16, 24 and 32-bit integer PCM
//   - any channel count and sample rate
//
// AIFF-C compressed variants are rejected by the underlying decoder.
//
//	f, _ := os.Open("jingle.aiff")
//	src, err := aiff.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//
//	buf := make([]float32, 441*src.Channels())
//	frames, err := src.ReadFrames(buf)
//
// The decoder needs to seek; other readers are buffered in memory first.
// Sources report their length through audio.Lengther.
package aiff
