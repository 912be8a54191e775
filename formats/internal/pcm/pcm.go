// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts the go-audio integer decoders to audio.Source.
package pcm

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// IntReader is the part of the go-audio wav and aiff decoders used here.
type IntReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source reads integer PCM from an IntReader as normalized float32 frames.
type Source struct {
	dec        IntReader
	sampleRate int
	channels   int
	scale      float32
	frames     int64
	buf        *goaudio.IntBuffer
}

// NewSource wraps dec. totalFrames may be zero when the length is unknown.
func NewSource(dec IntReader, sampleRate, channels, bitDepth int, totalFrames int64) *Source {
	return &Source{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      1 / float32(int64(1)<<(bitDepth-1)),
		frames:     totalFrames,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Close() error    { return nil }
func (s *Source) Length() int64   { return s.frames }

func (s *Source) ReadFrames(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	n -= n % s.channels
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v) * s.scale
	}

	frames := n / s.channels
	switch {
	case err == io.EOF:
		return frames, io.EOF
	case err != nil:
		return frames, fmt.Errorf("decoding pcm: %w", err)
	case frames == 0:
		// go-audio reports the end of the data chunk as an empty read.
		return 0, io.EOF
	}

	return frames, nil
}

// ReadSeeker returns r itself when it can seek, otherwise buffers it fully.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(data), nil
}
