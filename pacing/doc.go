// SPDX-License-Identifier: EPL-2.0

// Package pacing turns queue occupancy into producer back-pressure.
//
// A Controller is a PID controller over the fill level of one queue, in
// percent. Update returns a recommended delay in milliseconds: a positive
// value means the consumer drains faster than the producer fills, a
// negative value means the producer should slow down. Callers clamp
// negative consumer delays to zero; the output callback never consults a
// controller.
//
// A Throttle wraps a Controller for the producer side. Pace sleeps for a
// bounded, cancellable time when the estimated fill level is at or above
// the target:
//
//	th := pacing.NewThrottle(pacing.DefaultController(), 20*time.Millisecond)
//	usage := pacing.EstimateUsage(q.Usage(), frames, q.Capacity())
//	th.Pace(ctx, usage)
//	q.Push(chunk, frames, rate, channels)
//
// Neither type is safe for concurrent use. Use one per producer.
package pacing
