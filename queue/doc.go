// SPDX-License-Identifier: EPL-2.0

// Package queue implements the bounded audio queue that sits between one
// source and the output callback.
//
// A Queue is a single-producer, single-consumer ring of interleaved samples
// in a fixed target format. Push adapts incoming chunks to that format
// (channel remapping, then sample rate conversion) before enqueueing them,
// so producers may run at any rate and channel count:
//
//	q, err := queue.New[float32](48000, 2, 4800, 480) // 100 ms, primed at 10 ms
//	if err != nil {
//	    return err
//	}
//
//	// producer goroutine
//	ok := q.Push(chunk, frames, 44100, 1)
//
//	// output callback
//	q.Pop(out, framesPerBuffer, true)
//
// Synchronization is done with sync/atomic only. The producer writes slots
// and then publishes the tail and the count; the consumer loads the count
// before reading slots. Full and empty are decided by the count, so the
// whole storage is usable.
//
// Push is all or nothing: when the converted chunk does not fit, nothing is
// written and Push returns false. Pop refuses to run until the queue holds
// at least Min frames; once primed it may return fewer frames than asked,
// leaving the delivered frames in the buffer and returning false.
//
// Pop never allocates, blocks or logs and is safe to call from a real-time
// audio callback. Push reuses queue-owned scratch buffers, which is why a
// queue accepts exactly one producer.
//
// SetCapacity, SetFormat and Clear are not synchronized with Push and Pop.
// Call them only while neither side is running.
package queue
