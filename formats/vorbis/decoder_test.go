// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate int
	channels   int
	samples    []float32
	offset     int
	maxFrames  int // per Read, 0 for unlimited
	err        error
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }
func (m *mockOggVorbisReader) Length() int64   { return int64(len(m.samples) / m.channels) }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	frames := min(len(buf), len(m.samples)-m.offset) / m.channels
	if m.maxFrames > 0 {
		frames = min(frames, m.maxFrames)
	}

	n := copy(buf, m.samples[m.offset:m.offset+frames*m.channels])
	m.offset += n

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not Ogg Vorbis data")))
	assert.ErrorIs(t, err, ErrNotVorbisFile)
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNotVorbisFile)
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	dec := &mockOggVorbisReader{sampleRate: 48000, channels: 2, samples: make([]float32, 20)}
	src := &source{dec: dec, channels: 2}

	assert.Equal(t, 48000, src.SampleRate())
	assert.Equal(t, 2, src.Channels())
	assert.Equal(t, int64(10), src.Length())
	assert.NoError(t, src.Close())
}

func TestSource_ReadFramesCountsFrames(t *testing.T) {
	t.Parallel()

	samples := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	dec := &mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: samples}
	src := &source{dec: dec, channels: 2}

	dst := make([]float32, 5) // two whole frames
	n, err := src.ReadFrames(dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, samples[:4], dst[:4])

	n, err = src.ReadFrames(dst)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, samples[4:], dst[:2])

	n, err = src.ReadFrames(dst)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)
}

func TestSource_ShortDecodes(t *testing.T) {
	t.Parallel()

	samples := make([]float32, 3*40)
	for i := range samples {
		samples[i] = float32(i) / 256
	}
	dec := &mockOggVorbisReader{sampleRate: 22050, channels: 3, samples: samples, maxFrames: 7}
	src := &source{dec: dec, channels: 3}

	var got []float32
	dst := make([]float32, 3*16)
	for {
		n, err := src.ReadFrames(dst)
		got = append(got, dst[:n*3]...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, samples, got)
}

func TestSource_DecoderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad packet")
	src := &source{dec: &mockOggVorbisReader{channels: 1, err: boom}, channels: 1}

	_, err := src.ReadFrames(make([]float32, 4))
	assert.ErrorIs(t, err, boom)
}
