// SPDX-License-Identifier: EPL-2.0

package output

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ik5/audmix/audio"
)

// Drainer fills out with frames mixed frames. The mix bus implements it.
type Drainer[T audio.Sample] interface {
	Drain(out []T, frames int) int
}

// Recorder receives every period a Clock drains. wav.Writer implements it.
type Recorder[T audio.Sample] interface {
	Write(samples []T) error
	Close() error
}

// Driver is an output backend.
type Driver interface {
	// Start begins, or resumes, pulling periods from the Drainer.
	Start() error
	// Pause stops pulling periods until the next Start.
	Pause() error
	Playing() bool
	Close() error
}

// Config is the device format shared by all drivers.
type Config struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

func (c Config) validate() error {
	if c.SampleRate <= 0 || c.Channels <= 0 || c.FramesPerBuffer <= 0 {
		return ErrInvalidConfig
	}

	return nil
}

// Period is the playback time of one buffer.
func (c Config) Period() time.Duration {
	return time.Duration(c.FramesPerBuffer) * time.Second / time.Duration(c.SampleRate)
}

// PutSamples encodes src into dst as little-endian PCM (s16le for int16,
// f32le for float32) and returns the number of bytes written. dst must hold
// len(src)*audio.BytesPerSample[T]() bytes.
func PutSamples[T audio.Sample](dst []byte, src []T) int {
	if audio.IsInteger[T]() {
		for i, v := range src {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(v)))
		}
		return len(src) * 2
	}

	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(float32(v)))
	}

	return len(src) * 4
}

// pcmReader adapts a Drainer to io.Reader, producing little-endian PCM one
// period at a time.
type pcmReader[T audio.Sample] struct {
	cfg Config
	src Drainer[T]
	buf []T
}

func newPCMReader[T audio.Sample](cfg Config, src Drainer[T]) *pcmReader[T] {
	return &pcmReader[T]{
		cfg: cfg,
		src: src,
		buf: make([]T, cfg.FramesPerBuffer*cfg.Channels),
	}
}

func (r *pcmReader[T]) frameBytes() int {
	return r.cfg.Channels * audio.BytesPerSample[T]()
}

// Read fills p with whole frames. It never blocks and never fails.
func (r *pcmReader[T]) Read(p []byte) (int, error) {
	frames := len(p) / r.frameBytes()
	written := 0

	for frames > 0 {
		n := min(frames, r.cfg.FramesPerBuffer)
		period := r.buf[:n*r.cfg.Channels]

		r.src.Drain(period, n)
		written += PutSamples(p[written:], period)
		frames -= n
	}

	return written, nil
}
