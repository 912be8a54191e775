// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// Writer streams interleaved samples into a 16-bit PCM WAV file. The
// header sizes are fixed up on Close, so the destination must seek.
type Writer[T audio.Sample] struct {
	enc    *wav.Encoder
	closer io.Closer
	buf    *goaudio.IntBuffer
	frames int64
}

// Create creates (or truncates) path and writes into it. Close closes the
// file.
func Create[T audio.Sample](path string, sampleRate, channels int) (*Writer[T], error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating wav file: %w", err)
	}

	w := NewWriter[T](f, sampleRate, channels)
	w.closer = f

	return w, nil
}

// NewWriter writes into ws. Closing the writer does not close ws.
func NewWriter[T audio.Sample](ws io.WriteSeeker, sampleRate, channels int) *Writer[T] {
	return &Writer[T]{
		enc: wav.NewEncoder(ws, sampleRate, 16, channels, wavFormatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

// Write appends interleaved samples. float32 input is clamped to [-1, 1].
func (w *Writer[T]) Write(samples []T) error {
	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	if audio.IsInteger[T]() {
		for i, v := range samples {
			w.buf.Data[i] = int(v)
		}
	} else {
		for i, v := range samples {
			w.buf.Data[i] = int(utils.Float32ToInt16(float32(v)))
		}
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	w.frames += int64(len(samples) / w.buf.Format.NumChannels)

	return nil
}

// Frames is the number of frames written so far.
func (w *Writer[T]) Frames() int64 {
	return w.frames
}

// Close finalizes the header.
func (w *Writer[T]) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav file: %w", err)
	}
	if w.closer != nil {
		return w.closer.Close()
	}

	return nil
}
