// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package output

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/logging"
)

// Oto plays the mix on the default audio device. oto allows a single
// context per process, so only one Oto driver can exist at a time.
type Oto[T audio.Sample] struct {
	cfg    Config
	ctx    *oto.Context
	player *oto.Player
	logger *zap.Logger

	mtx    sync.Mutex
	closed bool
}

// NewOto opens the audio device and prepares a paused player that drains
// src. Call Start to begin playback.
func NewOto[T audio.Sample](cfg Config, src Drainer[T], logger *zap.Logger) (*Oto[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)

	format := oto.FormatFloat32LE
	if audio.IsInteger[T]() {
		format = oto.FormatSignedInt16LE
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       format,
		BufferSize:   cfg.Period(),
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(newPCMReader(cfg, src))
	// Keep the device buffer at one period so queue latency dominates.
	player.SetBufferSize(cfg.FramesPerBuffer * cfg.Channels * audio.BytesPerSample[T]())

	logger.Info("audio device opened",
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Int("channels", cfg.Channels),
		zap.Int("framesPerBuffer", cfg.FramesPerBuffer),
	)

	return &Oto[T]{
		cfg:    cfg,
		ctx:    ctx,
		player: player,
		logger: logger,
	}, nil
}

func (o *Oto[T]) Start() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.closed {
		return ErrClosed
	}
	if err := o.ctx.Err(); err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	if !o.player.IsPlaying() {
		o.player.Play()
		o.logger.Debug("playback started")
	}

	return nil
}

func (o *Oto[T]) Pause() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.player.IsPlaying() {
		o.player.Pause()
		o.logger.Debug("playback paused")
	}

	return nil
}

func (o *Oto[T]) Playing() bool {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	return !o.closed && o.player.IsPlaying()
}

func (o *Oto[T]) Close() error {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if err := o.player.Close(); err != nil {
		return fmt.Errorf("closing player: %w", err)
	}
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspending audio device: %w", err)
	}

	return nil
}
