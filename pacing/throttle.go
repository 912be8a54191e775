// SPDX-License-Identifier: EPL-2.0

package pacing

import (
	"context"
	"time"
)

// Throttle sleeps a producer in proportion to how far its queue is above
// the controller target.
type Throttle struct {
	ctrl     *Controller
	maxDelay time.Duration
}

// NewThrottle creates a throttle. Sleeps never exceed maxDelay.
func NewThrottle(ctrl *Controller, maxDelay time.Duration) *Throttle {
	if ctrl == nil {
		ctrl = DefaultController()
	}

	return &Throttle{ctrl: ctrl, maxDelay: maxDelay}
}

func (t *Throttle) Controller() *Controller {
	return t.ctrl
}

func (t *Throttle) MaxDelay() time.Duration {
	return t.maxDelay
}

// Pace updates the controller with estimatedUsage and, when the usage is at
// or above the target, sleeps for the recommended producer delay. It
// returns the time actually spent sleeping, which is shorter than planned
// when ctx is done first.
func (t *Throttle) Pace(ctx context.Context, estimatedUsage float64) time.Duration {
	delay := t.ctrl.Update(estimatedUsage)
	if estimatedUsage < t.ctrl.Target() || delay >= 0 {
		return 0
	}

	d := min(time.Duration(-delay*float64(time.Millisecond)), t.maxDelay)
	if d <= 0 {
		return 0
	}

	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return d
	case <-ctx.Done():
		return time.Since(start)
	}
}

// EstimateUsage predicts the fill level in percent after pushing
// chunkFrames more frames into a queue of capacityFrames frames.
func EstimateUsage(usage float64, chunkFrames, capacityFrames int) float64 {
	if capacityFrames <= 0 {
		return usage
	}

	return usage + float64(chunkFrames)/float64(capacityFrames)*100
}
