// SPDX-License-Identifier: EPL-2.0

package output

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/logging"
)

// Clock drains the mix at the device rate without a device. Each tick of a
// Period ticker pulls one period and, when a recorder is attached, writes
// it out.
type Clock[T audio.Sample] struct {
	cfg      Config
	src      Drainer[T]
	recorder Recorder[T]
	logger   *zap.Logger
	buf      []T

	mtx     sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	closed  bool
	periods atomic.Uint64
}

// NewClock creates a paused clock driver. recorder may be nil.
func NewClock[T audio.Sample](cfg Config, src Drainer[T], recorder Recorder[T], logger *zap.Logger) (*Clock[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)

	return &Clock[T]{
		cfg:      cfg,
		src:      src,
		recorder: recorder,
		logger:   logger,
		buf:      make([]T, cfg.FramesPerBuffer*cfg.Channels),
	}, nil
}

func (c *Clock[T]) Start() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.stop != nil {
		return nil
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.loop(c.stop, c.done)

	c.logger.Debug("clock started", zap.Duration("period", c.cfg.Period()))

	return nil
}

func (c *Clock[T]) Pause() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.halt()

	return nil
}

// halt stops the loop and waits for it. c.mtx must be held.
func (c *Clock[T]) halt() {
	if c.stop == nil {
		return
	}

	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil

	c.logger.Debug("clock paused", zap.Uint64("periods", c.periods.Load()))
}

func (c *Clock[T]) Playing() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.stop != nil
}

// Periods is the number of periods drained so far.
func (c *Clock[T]) Periods() uint64 {
	return c.periods.Load()
}

// Close stops the clock and finalizes the recording, if any.
func (c *Clock[T]) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.closed {
		return nil
	}
	c.halt()
	c.closed = true

	if c.recorder != nil {
		return c.recorder.Close()
	}

	return nil
}

func (c *Clock[T]) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ticker := time.NewTicker(c.cfg.Period())
	defer ticker.Stop()

	recorder := c.recorder

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		c.src.Drain(c.buf, c.cfg.FramesPerBuffer)
		c.periods.Add(1)

		if recorder == nil {
			continue
		}
		if err := recorder.Write(c.buf); err != nil {
			c.logger.Error("recording stopped", zap.Error(err))
			recorder = nil
		}
	}
}
