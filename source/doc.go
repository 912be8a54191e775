// SPDX-License-Identifier: EPL-2.0

// Package source implements the producers of the mixer.
//
// An Adapter owns one transport (an RTP or WebSocket stream, a capture
// process or a sound file) and hands every chunk it receives to a Sink as
// interleaved float32 samples, together with the chunk's rate and channel
// count. Feeder is the Sink used by the mixer: it converts the chunk to the
// queue sample type, paces the producer and pushes into the source's queue,
// splitting chunks that are larger than the queue. Live sources drop what
// does not fit after a few retries; file sources wait through WaitSink.
//
// Run blocks the calling goroutine, which stays locked to its OS thread
// until Run returns. Run returns nil when its context is cancelled or Stop
// is called, and a wrapped error when the transport fails.
package source
