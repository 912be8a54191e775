// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/ik5/audmix/audio"
)

// Queue is a bounded SPSC ring of interleaved samples in a fixed format.
type Queue[T audio.Sample] struct {
	storage []T

	head  atomic.Int64 // next slot to read, consumer owned
	tail  atomic.Int64 // next slot to write, producer owned
	count atomic.Int64 // live samples
	usage atomic.Uint64

	sampleRate int
	channels   int
	minFrames  int

	// Producer scratch, reused between pushes.
	remapped []T
	floatIn  []float32
	floatOut []float32
	resized  []T
}

// New creates a queue holding capacityFrames frames of channels-channel
// audio at sampleRate. Pop fails until minFrames frames are buffered.
func New[T audio.Sample](sampleRate, channels, capacityFrames, minFrames int) (*Queue[T], error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrInvalidFormat
	}
	if capacityFrames <= 0 {
		return nil, ErrInvalidCapacity
	}
	if minFrames < 0 || minFrames > capacityFrames {
		return nil, ErrInvalidMin
	}

	return &Queue[T]{
		storage:    make([]T, capacityFrames*channels),
		sampleRate: sampleRate,
		channels:   channels,
		minFrames:  minFrames,
	}, nil
}

// Push adapts frames of inputChannels-channel audio at inputRate to the
// queue format and enqueues them. It returns false, writing nothing, when
// data is too short or the converted chunk does not fit.
func (q *Queue[T]) Push(data []T, frames, inputRate, inputChannels int) bool {
	defer q.updateUsage()

	if frames <= 0 || inputRate <= 0 || inputChannels <= 0 || len(data) < frames*inputChannels {
		return false
	}
	data = data[:frames*inputChannels]

	if inputChannels != q.channels {
		q.remapped = audio.RemapChannels(q.remapped, data, frames, inputChannels, q.channels)
		data = q.remapped
	}

	if inputRate != q.sampleRate {
		q.floatIn = audio.ToFloat32(q.floatIn, data)
		q.floatOut = audio.Resample(q.floatOut, q.floatIn, frames, q.channels, inputRate, q.sampleRate)
		q.resized = audio.FromFloat32(q.resized, q.floatOut)
		data = q.resized
	}

	n := int64(len(data))
	size := int64(len(q.storage))
	if n == 0 || n > size-q.count.Load() {
		return false
	}

	tail := q.tail.Load()
	first := min(n, size-tail)
	copy(q.storage[tail:], data[:first])
	copy(q.storage, data[first:])

	q.tail.Store((tail + n) % size)
	q.count.Add(n)

	return true
}

// Pop dequeues frames frames into data. With additive set the samples are
// added onto data, otherwise they replace it.
//
// Pop fails without touching data while fewer than Min frames are buffered.
// When the queue runs dry before frames frames, the delivered part stays in
// data and Pop returns false.
func (q *Queue[T]) Pop(data []T, frames int, additive bool) bool {
	defer q.updateUsage()

	need := int64(frames * q.channels)
	if frames <= 0 || int64(len(data)) < need {
		return false
	}

	avail := q.count.Load()
	if avail < int64(q.minFrames*q.channels) {
		return false
	}

	n := min(need, avail)
	size := int64(len(q.storage))
	head := q.head.Load()
	first := min(n, size-head)

	if additive {
		addInto(data[:first], q.storage[head:head+first])
		addInto(data[first:n], q.storage[:n-first])
	} else {
		copy(data[:first], q.storage[head:head+first])
		copy(data[first:n], q.storage[:n-first])
	}

	q.head.Store((head + n) % size)
	q.count.Add(-n)

	return n == need
}

func addInto[T audio.Sample](dst, src []T) {
	for i, v := range src {
		dst[i] = audio.Add(dst[i], v)
	}
}

func (q *Queue[T]) updateUsage() {
	u := float64(q.count.Load()) / float64(len(q.storage)) * 100
	q.usage.Store(math.Float64bits(u))
}

// Usage is the fill level in percent as of the last Push or Pop.
func (q *Queue[T]) Usage() float64 {
	return math.Float64frombits(q.usage.Load())
}

// Empty reports whether no samples are buffered.
func (q *Queue[T]) Empty() bool {
	return q.count.Load() == 0
}

// Size is the number of buffered samples.
func (q *Queue[T]) Size() int {
	return int(q.count.Load())
}

// Frames is the number of buffered frames.
func (q *Queue[T]) Frames() int {
	return q.Size() / q.channels
}

// Capacity in frames.
func (q *Queue[T]) Capacity() int {
	return len(q.storage) / q.channels
}

// Min is the priming threshold in frames.
func (q *Queue[T]) Min() int {
	return q.minFrames
}

func (q *Queue[T]) SampleRate() int {
	return q.sampleRate
}

func (q *Queue[T]) Channels() int {
	return q.channels
}

// Latency is the playback time of the buffered frames.
func (q *Queue[T]) Latency() time.Duration {
	return time.Duration(q.Frames()) * time.Second / time.Duration(q.sampleRate)
}

// SetCapacity reallocates the storage for frames frames, dropping any
// buffered audio.
func (q *Queue[T]) SetCapacity(frames int) error {
	if frames <= 0 {
		return ErrInvalidCapacity
	}
	if frames < q.minFrames {
		return ErrInvalidMin
	}

	q.storage = make([]T, frames*q.channels)
	q.Clear()

	return nil
}

// SetFormat changes the target format, keeping the capacity in frames and
// dropping any buffered audio.
func (q *Queue[T]) SetFormat(sampleRate, channels int) error {
	if sampleRate <= 0 || channels <= 0 {
		return ErrInvalidFormat
	}

	frames := q.Capacity()
	q.sampleRate = sampleRate
	if channels != q.channels {
		q.channels = channels
		q.storage = make([]T, frames*channels)
	}
	q.Clear()

	return nil
}

// Clear drops all buffered audio.
func (q *Queue[T]) Clear() {
	q.head.Store(0)
	q.tail.Store(0)
	q.count.Store(0)
	q.updateUsage()
}
