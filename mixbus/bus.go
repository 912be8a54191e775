// SPDX-License-Identifier: EPL-2.0

package mixbus

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/queue"
)

var (
	ErrDuplicateName = errors.New("a queue with this name is already on the bus")
	ErrFormat        = errors.New("queue format does not match the bus")
)

// Entry is a named queue on the bus.
type Entry[T audio.Sample] struct {
	Name  string
	Queue *queue.Queue[T]
}

// Bus mixes every attached queue into one output stream.
type Bus[T audio.Sample] struct {
	sampleRate int
	channels   int

	mtx      sync.Mutex
	snapshot atomic.Pointer[[]Entry[T]]
}

// New creates an empty bus for sampleRate Hz channels-channel output.
func New[T audio.Sample](sampleRate, channels int) *Bus[T] {
	b := &Bus[T]{sampleRate: sampleRate, channels: channels}
	b.snapshot.Store(&[]Entry[T]{})

	return b
}

func (b *Bus[T]) SampleRate() int { return b.sampleRate }
func (b *Bus[T]) Channels() int   { return b.channels }

// Add attaches q under name. The queue must already be in the bus format.
func (b *Bus[T]) Add(name string, q *queue.Queue[T]) error {
	if q.SampleRate() != b.sampleRate || q.Channels() != b.channels {
		return ErrFormat
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	cur := *b.snapshot.Load()
	for _, e := range cur {
		if e.Name == name {
			return ErrDuplicateName
		}
	}

	next := make([]Entry[T], len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, Entry[T]{Name: name, Queue: q})
	b.snapshot.Store(&next)

	return nil
}

// Remove detaches the queue registered under name and returns it. The
// output callback may still be reading the old snapshot when Remove
// returns, so callers must not Clear the queue until the next period.
func (b *Bus[T]) Remove(name string) (*queue.Queue[T], bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	cur := *b.snapshot.Load()
	for i, e := range cur {
		if e.Name != name {
			continue
		}

		next := make([]Entry[T], 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		b.snapshot.Store(&next)

		return e.Queue, true
	}

	return nil, false
}

// Entries returns the current snapshot. The slice must not be modified.
func (b *Bus[T]) Entries() []Entry[T] {
	return *b.snapshot.Load()
}

// Len is the number of attached queues.
func (b *Bus[T]) Len() int {
	return len(*b.snapshot.Load())
}

// Drain is the output callback body. It zeroes out[:frames*channels] and
// adds every attached queue onto it. Queues that cannot deliver a full
// period contribute what they have, or silence while priming. It returns
// the number of queues that delivered a full period.
func (b *Bus[T]) Drain(out []T, frames int) int {
	if frames <= 0 {
		return 0
	}

	n := frames * b.channels
	if n > len(out) {
		n = len(out) - len(out)%b.channels
		frames = n / b.channels
	}
	clear(out[:n])

	full := 0
	for _, e := range *b.snapshot.Load() {
		if e.Queue.Pop(out[:n], frames, true) {
			full++
		}
	}

	return full
}

// AllEmpty reports whether no attached queue holds any audio.
func (b *Bus[T]) AllEmpty() bool {
	for _, e := range *b.snapshot.Load() {
		if !e.Queue.Empty() {
			return false
		}
	}

	return true
}
