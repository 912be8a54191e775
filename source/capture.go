// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/ik5/audmix/utils"
)

// CaptureConfig runs an external capture program that writes raw
// interleaved s16le PCM to stdout, for example
// ffmpeg -f alsa -i hw:1 -f s16le -ac 2 -ar 48000 -.
type CaptureConfig struct {
	Command []string
	// Env is appended to the process environment.
	Env        []string
	SampleRate int
	Channels   int
	// ChunkFrames is the read size. Zero means DefaultChunkFrames.
	ChunkFrames int
}

// CaptureSource streams the output of a capture process. The process is
// killed when Run stops.
type CaptureSource struct {
	base

	cfg     CaptureConfig
	sink    Sink
	samples []float32
}

func NewCaptureSource(name string, cfg CaptureConfig, sink Sink, logger *zap.Logger) (*CaptureSource, error) {
	if len(cfg.Command) == 0 || cfg.Command[0] == "" {
		return nil, ErrNoCommand
	}
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 {
		return nil, ErrInvalidFormat
	}
	if cfg.ChunkFrames <= 0 {
		cfg.ChunkFrames = DefaultChunkFrames
	}

	return &CaptureSource{
		base: newBase(name, KindCapture, logger),
		cfg:  cfg,
		sink: sink,
	}, nil
}

// Run starts the process and reads it until it exits or ctx is done. A
// process that exits on its own with status zero ends the source without
// error.
func (s *CaptureSource) Run(ctx context.Context) error {
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end()

	cmd := exec.CommandContext(ctx, s.cfg.Command[0], s.cfg.Command[1:]...)
	if len(s.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), s.cfg.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("capture source %s: %w", s.name, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("capture source %s: %w", s.name, err)
	}
	s.logger.Info("capture started", zap.Strings("command", s.cfg.Command), zap.Int("pid", cmd.Process.Pid))

	readErr := s.read(stdout)
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil
	}
	if readErr != nil {
		return fmt.Errorf("capture source %s: %w", s.name, readErr)
	}
	if waitErr != nil {
		return fmt.Errorf("capture source %s: %w", s.name, waitErr)
	}

	return nil
}

func (s *CaptureSource) read(r io.Reader) error {
	frameBytes := 2 * s.cfg.Channels
	buf := make([]byte, s.cfg.ChunkFrames*frameBytes)

	for {
		n, err := io.ReadFull(r, buf)

		if frames := n / frameBytes; frames > 0 {
			s.samples = utils.DecodeS16(s.samples, buf[:frames*frameBytes], binary.LittleEndian)
			s.sink.Write(s.samples, frames, s.cfg.SampleRate, s.cfg.Channels)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, os.ErrClosed):
			return nil
		default:
			return err
		}
	}
}
