// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/audmix/internal/logging"
)

// DefaultChunkFrames is the read size of file and capture sources when
// none is configured.
const DefaultChunkFrames = 1024

type Kind int

const (
	KindNetwork Kind = iota
	KindCapture
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindCapture:
		return "capture"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Adapter is one audio producer.
type Adapter interface {
	// Run streams audio into the adapter's sink until ctx is done, Stop is
	// called, the stream ends or the transport fails.
	Run(ctx context.Context) error
	// Stop makes a running Run return. Calling Stop before Run makes the
	// next Run return at once.
	Stop()
	IsActive() bool
	Name() string
	Kind() Kind
}

// Sink receives chunks of interleaved float32 samples. Write reports
// whether the chunk was accepted.
type Sink interface {
	Write(samples []float32, frames, sampleRate, channels int) bool
}

// WaitSink is a Sink that can hold a producer until the whole chunk is
// queued. File sources use it so that no audio is lost.
type WaitSink interface {
	Sink
	WriteWait(ctx context.Context, samples []float32, frames, sampleRate, channels int) error
}

// base carries the lifecycle shared by every adapter.
type base struct {
	name   string
	kind   Kind
	logger *zap.Logger

	mtx     *sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	active  *atomic.Bool
}

func newBase(name string, kind Kind, logger *zap.Logger) base {
	return base{
		name:   name,
		kind:   kind,
		logger: logging.OrNop(logger).Named("source").With(zap.String(logging.KeySource, name), zap.Stringer(logging.KeyKind, kind)),
		mtx:    &sync.Mutex{},
		active: &atomic.Bool{},
	}
}

func (b *base) Name() string   { return b.name }
func (b *base) Kind() Kind     { return b.kind }
func (b *base) IsActive() bool { return b.active.Load() }

func (b *base) Stop() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.stopped = true
	if b.cancel != nil {
		b.cancel()
	}
}

// begin marks the adapter running and derives its run context. The caller
// is locked to its OS thread until end.
func (b *base) begin(ctx context.Context) (context.Context, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.cancel != nil {
		return nil, ErrAlreadyRunning
	}

	ctx, b.cancel = context.WithCancel(ctx)
	if b.stopped {
		b.cancel()
	}

	runtime.LockOSThread()
	b.active.Store(true)
	b.logger.Debug("source started")

	return ctx, nil
}

func (b *base) end() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.active.Store(false)
	b.cancel()
	b.cancel = nil
	runtime.UnlockOSThread()
	b.logger.Debug("source stopped")
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
