// SPDX-License-Identifier: EPL-2.0

package mixbus

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/queue"
)

func newQueue[T float32 | int16](t testing.TB, rate, channels, capacity int) *queue.Queue[T] {
	t.Helper()

	q, err := queue.New[T](rate, channels, capacity, 0)
	require.NoError(t, err)

	return q
}

func fill(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}

	return s
}

func TestBus_DrainMixes(t *testing.T) {
	t.Parallel()

	b := New[float32](48000, 2)
	a := newQueue[float32](t, 48000, 2, 64)
	c := newQueue[float32](t, 48000, 2, 64)
	require.NoError(t, b.Add("a", a))
	require.NoError(t, b.Add("c", c))

	require.True(t, a.Push(fill(8*2, 0.3), 8, 48000, 2))
	require.True(t, c.Push(fill(8*2, 0.4), 8, 48000, 2))

	out := fill(8*2, 9) // stale data must be cleared
	assert.Equal(t, 2, b.Drain(out, 8))
	for i, v := range out {
		assert.InDelta(t, 0.7, v, 1e-6, "sample %d", i)
	}
}

func TestBus_DrainSilenceWhenEmpty(t *testing.T) {
	t.Parallel()

	b := New[int16](8000, 1)
	require.NoError(t, b.Add("idle", newQueue[int16](t, 8000, 1, 16)))

	out := []int16{5, 5, 5, 5}
	assert.Zero(t, b.Drain(out, 4))
	assert.Equal(t, []int16{0, 0, 0, 0}, out)

	assert.Zero(t, New[int16](8000, 1).Drain(out, 4))
}

func TestBus_DrainPartialSource(t *testing.T) {
	t.Parallel()

	b := New[int16](8000, 1)
	short := newQueue[int16](t, 8000, 1, 16)
	require.NoError(t, b.Add("short", short))
	require.True(t, short.Push([]int16{7, 7}, 2, 8000, 1))

	out := make([]int16, 4)
	assert.Zero(t, b.Drain(out, 4))
	assert.Equal(t, []int16{7, 7, 0, 0}, out)
}

func TestBus_DrainClampsToBuffer(t *testing.T) {
	t.Parallel()

	b := New[float32](48000, 2)
	q := newQueue[float32](t, 48000, 2, 64)
	require.NoError(t, b.Add("q", q))
	require.True(t, q.Push(fill(10*2, 0.5), 10, 48000, 2))

	out := make([]float32, 5) // room for two whole frames
	assert.Equal(t, 1, b.Drain(out, 10))
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5, 0}, out)
	assert.Equal(t, 8, q.Frames())
}

func TestBus_DrainNonPositiveFrames(t *testing.T) {
	t.Parallel()

	b := New[int16](8000, 1)
	q := newQueue[int16](t, 8000, 1, 16)
	require.NoError(t, b.Add("q", q))
	require.True(t, q.Push([]int16{3, 3}, 2, 8000, 1))

	out := []int16{5, 5}
	for _, frames := range []int{0, -1, -100} {
		assert.Zero(t, b.Drain(out, frames))
	}
	assert.Equal(t, []int16{5, 5}, out)
	assert.Equal(t, 2, q.Frames())
}

func TestBus_AddRemove(t *testing.T) {
	t.Parallel()

	b := New[float32](44100, 2)
	q1 := newQueue[float32](t, 44100, 2, 16)
	q2 := newQueue[float32](t, 44100, 2, 16)

	require.NoError(t, b.Add("one", q1))
	require.NoError(t, b.Add("two", q2))
	assert.ErrorIs(t, b.Add("one", q2), ErrDuplicateName)
	assert.ErrorIs(t, b.Add("mono", newQueue[float32](t, 44100, 1, 16)), ErrFormat)
	assert.ErrorIs(t, b.Add("rate", newQueue[float32](t, 48000, 2, 16)), ErrFormat)

	before := b.Entries()
	got, ok := b.Remove("one")
	require.True(t, ok)
	assert.Same(t, q1, got)

	// Published snapshots are immutable.
	assert.Len(t, before, 2)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, "two", b.Entries()[0].Name)

	_, ok = b.Remove("one")
	assert.False(t, ok)
}

func TestBus_AllEmpty(t *testing.T) {
	t.Parallel()

	b := New[float32](48000, 1)
	assert.True(t, b.AllEmpty())

	q := newQueue[float32](t, 48000, 1, 16)
	require.NoError(t, b.Add("q", q))
	assert.True(t, b.AllEmpty())

	require.True(t, q.Push([]float32{0.1}, 1, 48000, 1))
	assert.False(t, b.AllEmpty())
}

func TestBus_MembershipChangesDuringDrain(t *testing.T) {
	t.Parallel()

	b := New[float32](48000, 2)

	var (
		wg   sync.WaitGroup
		stop atomic.Bool
	)
	wg.Add(1)

	go func() {
		defer wg.Done()

		out := make([]float32, 64*2)
		for !stop.Load() {
			b.Drain(out, 64)
		}
	}()

	for i := range 500 {
		name := fmt.Sprintf("q%d", i%8)
		if _, ok := b.Remove(name); !ok {
			require.NoError(t, b.Add(name, newQueue[float32](t, 48000, 2, 128)))
		}
	}

	stop.Store(true)
	wg.Wait()

	assert.LessOrEqual(t, b.Len(), 8)
}

func TestBus_DrainZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	b := New[float32](48000, 2)
	q := newQueue[float32](t, 48000, 2, 1024)
	require.NoError(t, b.Add("q", q))

	in := make([]float32, 441*2)
	out := make([]float32, 441*2)

	allocs := testing.AllocsPerRun(100, func() {
		q.Push(in, 441, 48000, 2)
		b.Drain(out, 441)
	})
	assert.Zero(t, allocs)
}

func BenchmarkBus_Drain(b *testing.B) {
	bus := New[float32](48000, 2)
	queues := make([]*queue.Queue[float32], 4)
	for i := range queues {
		queues[i] = newQueue[float32](b, 48000, 2, 4800)
		require.NoError(b, bus.Add(fmt.Sprintf("q%d", i), queues[i]))
	}

	in := make([]float32, 480*2)
	out := make([]float32, 480*2)

	b.ReportAllocs()

	for b.Loop() {
		for _, q := range queues {
			q.Push(in, 480, 48000, 2)
		}
		bus.Drain(out, 480)
	}
}
