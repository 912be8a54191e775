// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/logging"
	"github.com/ik5/audmix/pacing"
	"github.com/ik5/audmix/queue"
)

// FeederConfig is the push policy of a Feeder.
type FeederConfig struct {
	// Throttle paces the producer. Nil uses the default controller with a
	// 20 ms ceiling.
	Throttle *pacing.Throttle
	// Retries is how many more times a rejected chunk is pushed before it
	// is dropped.
	Retries int
	// RetryBackoff is the wait between retries. Retries are skipped when
	// it is not positive.
	RetryBackoff time.Duration
}

// FeederStats counts the work a Feeder did.
type FeederStats struct {
	// Pushed counts successful queue pushes. A chunk split to fit the
	// queue counts once per piece.
	Pushed uint64
	// Dropped counts chunks given up, whole or in part.
	Dropped uint64
}

// waitInterval is the wait between pushes in WriteWait when the feeder has
// no retry backoff.
const waitInterval = 5 * time.Millisecond

// Feeder is the Sink in front of one queue. Write and WriteWait must be
// called from a single goroutine, the queue's producer.
type Feeder[T audio.Sample] struct {
	name     string
	q        *queue.Queue[T]
	throttle *pacing.Throttle
	retries  int
	backoff  time.Duration
	logger   *zap.Logger
	buf      []T

	ctx    context.Context
	cancel context.CancelFunc

	pushed  atomic.Uint64
	dropped atomic.Uint64
}

func NewFeeder[T audio.Sample](name string, q *queue.Queue[T], cfg FeederConfig, logger *zap.Logger) *Feeder[T] {
	throttle := cfg.Throttle
	if throttle == nil {
		throttle = pacing.NewThrottle(nil, 20*time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Feeder[T]{
		name:     name,
		q:        q,
		throttle: throttle,
		retries:  max(cfg.Retries, 0),
		backoff:  cfg.RetryBackoff,
		logger:   logging.OrNop(logger).Named("feeder").With(zap.String(logging.KeySource, name)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Write converts the chunk to T, paces the producer and pushes the chunk,
// retrying per the feeder policy. A chunk larger than the queue is pushed
// in pieces that fit. It returns false when the chunk, or its remainder,
// was dropped.
func (f *Feeder[T]) Write(samples []float32, frames, sampleRate, channels int) bool {
	if !validChunk(samples, frames, sampleRate, channels) {
		return false
	}
	step := f.prepare(samples, frames, sampleRate, channels)
	if step == 0 {
		f.drop(frames)
		return false
	}

	for off := 0; off < frames; off += step {
		n := min(step, frames-off)
		if !f.push(off, n, sampleRate, channels) {
			f.drop(frames - off)
			return false
		}
	}

	return true
}

// WriteWait pushes the whole chunk, waiting for room as long as it takes.
// Nothing is dropped: it returns ctx's error when ctx is done or the
// feeder closed first, and ErrChunkTooLarge when a single frame does not
// fit the queue.
func (f *Feeder[T]) WriteWait(ctx context.Context, samples []float32, frames, sampleRate, channels int) error {
	if !validChunk(samples, frames, sampleRate, channels) {
		return ErrInvalidFormat
	}
	step := f.prepare(samples, frames, sampleRate, channels)
	if step == 0 {
		return ErrChunkTooLarge
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(f.ctx, cancel)
	defer stop()

	wait := f.backoff
	if wait <= 0 {
		wait = waitInterval
	}

	for off := 0; off < frames; off += step {
		n := min(step, frames-off)
		piece := f.buf[off*channels : (off+n)*channels]

		f.pace(ctx, n, sampleRate)
		for !f.q.Push(piece, n, sampleRate, channels) {
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
		}
		f.pushed.Add(1)
	}

	return nil
}

func validChunk(samples []float32, frames, sampleRate, channels int) bool {
	return frames > 0 && channels > 0 && sampleRate > 0 && len(samples) >= frames*channels
}

// prepare converts the chunk into f.buf and returns the largest piece, in
// input frames, whose converted size fits the queue. Zero means not even
// one frame fits.
func (f *Feeder[T]) prepare(samples []float32, frames, sampleRate, channels int) int {
	step := fitFrames(sampleRate, f.q.SampleRate(), f.q.Capacity())
	if step > 0 {
		f.buf = audio.FromFloat32(f.buf, samples[:frames*channels])
	}

	return step
}

// push paces and pushes frames input frames starting at frame off of
// f.buf, retrying per the feeder policy.
func (f *Feeder[T]) push(off, frames, sampleRate, channels int) bool {
	piece := f.buf[off*channels : (off+frames)*channels]
	f.pace(f.ctx, frames, sampleRate)

	for attempt := 0; ; attempt++ {
		if f.q.Push(piece, frames, sampleRate, channels) {
			f.pushed.Add(1)
			return true
		}
		if attempt >= f.retries || f.backoff <= 0 || !sleep(f.ctx, f.backoff) {
			return false
		}
	}
}

func (f *Feeder[T]) pace(ctx context.Context, frames, sampleRate int) {
	chunk := audio.ResampledFrames(frames, sampleRate, f.q.SampleRate())
	f.throttle.Pace(ctx, pacing.EstimateUsage(f.q.Usage(), chunk, f.q.Capacity()))
}

func (f *Feeder[T]) drop(frames int) {
	dropped := f.dropped.Add(1)
	f.logger.Debug("chunk dropped",
		zap.Int(logging.KeyFrames, frames),
		zap.Float64(logging.KeyUsage, f.q.Usage()),
		zap.Uint64(logging.KeyDropped, dropped),
	)
}

// fitFrames is the largest number of input frames at inRate that occupies
// at most capacity frames at outRate.
func fitFrames(inRate, outRate, capacity int) int {
	n := int(int64(capacity) * int64(inRate) / int64(outRate))
	for n > 0 && audio.ResampledFrames(n, inRate, outRate) > capacity {
		n--
	}
	for audio.ResampledFrames(n+1, inRate, outRate) <= capacity {
		n++
	}

	return n
}

func (f *Feeder[T]) Queue() *queue.Queue[T] {
	return f.q
}

func (f *Feeder[T]) Stats() FeederStats {
	return FeederStats{
		Pushed:  f.pushed.Load(),
		Dropped: f.dropped.Load(),
	}
}

// Close cuts short any pacing sleep or retry wait in progress. Later
// writes push at most once.
func (f *Feeder[T]) Close() {
	f.cancel()
}
