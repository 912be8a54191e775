// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	sampleRate int
	samples    []int16 // interleaved stereo
	offset     int     // in bytes
	chunk      int     // max bytes per Read, 0 for unlimited
	err        error
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }
func (m *mockMP3Reader) Length() int64   { return int64(len(m.samples) * 2) }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}

	raw := make([]byte, len(m.samples)*2)
	for i, v := range m.samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
	}
	if m.offset >= len(raw) {
		return 0, io.EOF
	}

	end := len(raw)
	if m.chunk > 0 {
		end = min(end, m.offset+m.chunk)
	}
	n := copy(buf, raw[m.offset:end])
	m.offset += n

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not MP3 data")))
	assert.ErrorIs(t, err, ErrNotMP3File)
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockMP3Reader{sampleRate: 44100, samples: make([]int16, 200)}}

	assert.Equal(t, 44100, src.SampleRate())
	assert.Equal(t, 2, src.Channels())
	assert.Equal(t, int64(100), src.Length())
	assert.NoError(t, src.Close())
}

func TestSource_ReadFrames(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockMP3Reader{
		sampleRate: 48000,
		samples:    []int16{0, 16384, -16384, -32768, 8192, -8192},
	}}

	dst := make([]float32, 4)
	n, err := src.ReadFrames(dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []float32{0, 0.5, -0.5, -1}, dst)

	n, err = src.ReadFrames(dst)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, n)
	assert.Equal(t, []float32{0.25, -0.25}, dst[:2])

	n, err = src.ReadFrames(dst)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)
}

func TestSource_ShortReadsKeepFramesWhole(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 64)
	for i := range samples {
		samples[i] = int16(i * 100)
	}

	// 3-byte reads split samples and frames across calls.
	src := &source{dec: &mockMP3Reader{sampleRate: 44100, samples: samples, chunk: 3}}

	var got []float32
	dst := make([]float32, 10)
	for {
		n, err := src.ReadFrames(dst)
		got = append(got, dst[:n*2]...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	require.Len(t, got, len(samples))
	for i, v := range samples {
		assert.Equal(t, float32(v)/32768, got[i], "sample %d", i)
	}
}

func TestSource_DecoderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt frame")
	src := &source{dec: &mockMP3Reader{sampleRate: 44100, err: boom}}

	_, err := src.ReadFrames(make([]float32, 8))
	assert.ErrorIs(t, err, boom)
}

func TestSource_TinyDst(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockMP3Reader{sampleRate: 44100, samples: make([]int16, 4)}}

	n, err := src.ReadFrames(make([]float32, 1))
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func BenchmarkSource_ReadFrames(b *testing.B) {
	dst := make([]float32, 1152*2)

	b.ReportAllocs()

	for b.Loop() {
		src := &source{dec: &mockMP3Reader{sampleRate: 44100, samples: make([]int16, 1152*2)}}
		_, _ = src.ReadFrames(dst)
	}
}
