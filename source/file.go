// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/internal/logging"
)

// fileRetryInterval is the wait before a chunk rejected by a plain Sink is
// offered again. File audio is never dropped.
const fileRetryInterval = 5 * time.Millisecond

// DefaultRegistry returns a registry with every built in decoder.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})

	return r
}

type FileConfig struct {
	Path string
	// Loop restarts the file when it ends.
	Loop bool
	// ChunkFrames is the read size. Zero means DefaultChunkFrames.
	ChunkFrames int
	// Registry picks the decoder by file extension. Nil means
	// DefaultRegistry.
	Registry *audio.Registry
}

// FileSource plays a sound file into its sink. A file is read as fast as
// the sink accepts it: a WaitSink holds each chunk until it is queued, and
// a chunk rejected by a plain Sink is offered again until it fits.
type FileSource struct {
	base

	cfg  FileConfig
	sink Sink
	buf  []float32
}

func NewFileSource(name string, cfg FileConfig, sink Sink, logger *zap.Logger) *FileSource {
	if cfg.ChunkFrames <= 0 {
		cfg.ChunkFrames = DefaultChunkFrames
	}
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry()
	}

	return &FileSource{
		base: newBase(name, KindFile, logger),
		cfg:  cfg,
		sink: sink,
	}
}

func (s *FileSource) Run(ctx context.Context) error {
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end()

	for pass := 0; ctx.Err() == nil; pass++ {
		frames, err := s.play(ctx)
		if err != nil {
			return fmt.Errorf("file source %s: %w", s.name, err)
		}
		if frames == 0 && ctx.Err() == nil {
			return fmt.Errorf("file source %s: %w", s.name, ErrNoAudio)
		}

		s.logger.Debug("file finished", zap.Int("pass", pass), zap.Int64(logging.KeyFrames, frames))

		if !s.cfg.Loop {
			return nil
		}
	}

	return nil
}

// play streams the file once and returns the frames delivered.
func (s *FileSource) play(ctx context.Context) (int64, error) {
	dec, err := s.cfg.Registry.ForPath(s.cfg.Path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.cfg.Path, err)
	}

	f, err := os.Open(s.cfg.Path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.cfg.Path, err)
	}
	defer src.Close()

	rate, channels := src.SampleRate(), src.Channels()
	if rate <= 0 || channels <= 0 {
		return 0, ErrInvalidFormat
	}

	need := s.cfg.ChunkFrames * channels
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	buf := s.buf[:need]

	var total int64
	for ctx.Err() == nil {
		n, err := src.ReadFrames(buf)
		if n > 0 {
			ok, err := s.deliver(ctx, buf[:n*channels], n, rate, channels)
			if err != nil {
				return total, err
			}
			if !ok {
				return total, nil
			}
			total += int64(n)
		}

		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// deliver hands the chunk to the sink without dropping it. It reports
// false when ctx ended first.
func (s *FileSource) deliver(ctx context.Context, samples []float32, frames, rate, channels int) (bool, error) {
	if ws, ok := s.sink.(WaitSink); ok {
		err := ws.WriteWait(ctx, samples, frames, rate, channels)
		switch {
		case err == nil:
			return true, nil
		case ctx.Err() != nil, errors.Is(err, context.Canceled):
			return false, nil
		default:
			return false, err
		}
	}

	for !s.sink.Write(samples, frames, rate, channels) {
		if !sleep(ctx, fileRetryInterval) {
			return false, nil
		}
	}

	return true, nil
}
