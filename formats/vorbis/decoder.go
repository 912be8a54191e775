// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audmix/audio"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	// Read returns the number of values decoded, always whole frames.
	Read([]float32) (int, error)
}

type source struct {
	dec      oggReader
	channels int
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

// Length in frames, zero when unknown.
func (s *source) Length() int64 { return s.dec.Length() }

func (s *source) ReadFrames(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	// oggvorbis decodes straight into dst, already interleaved in [-1, 1].
	n, err := s.dec.Read(dst[:want])
	frames := n / s.channels

	switch {
	case err == io.EOF:
		return frames, io.EOF
	case err != nil:
		return frames, fmt.Errorf("decoding vorbis: %w", err)
	}

	return frames, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}

	return &source{
		dec:      dec,
		channels: dec.Channels(),
	}, nil
}
