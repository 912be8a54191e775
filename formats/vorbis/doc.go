// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis decoding.
//
// This package uses github.com/jfreymuth/oggvorbis, a pure Go decoder that
// produces float32 samples directly, so no conversion happens on read.
//
//	f, _ := os.Open("ambience.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//
//	buf := make([]float32, 1024*src.Channels())
//	frames, err := src.ReadFrames(buf)
//
// Length reports the stream length in frames when the container header
// carries it, and zero otherwise.
package vorbis
