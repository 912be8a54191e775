// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 decoding.
//
// This package uses github.com/hajimehoshi/go-mp3, a pure Go decoder. The
// decoder always produces stereo; mono files are duplicated into both
// channels by go-mp3.
//
//	f, _ := os.Open("song.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//
//	buf := make([]float32, 1152*src.Channels())
//	frames, err := src.ReadFrames(buf)
//
// When the input can seek the source also reports its length in frames
// through audio.Lengther.
package mp3
