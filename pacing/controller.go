// SPDX-License-Identifier: EPL-2.0

package pacing

const (
	DefaultKp     = 1.0
	DefaultKi     = 0.01
	DefaultKd     = 0.001
	DefaultTarget = 50.0

	// DefaultIntegralLimit keeps Ki*integral within 5 ms at DefaultKi, so
	// a long stretch below target cannot mask a full queue.
	DefaultIntegralLimit = 500.0
)

// Controller is a PID controller over a fill level in percent.
type Controller struct {
	kp, ki, kd float64
	target     float64

	integral      float64
	integralLimit float64 // 0 disables the clamp
	prevErr       float64
	last          float64
}

// NewController creates a controller with the given gains and target fill
// level. The target is clamped to [0, 100].
func NewController(kp, ki, kd, target float64) *Controller {
	c := &Controller{}
	c.SetGains(kp, ki, kd)
	c.SetTarget(target)

	return c
}

// DefaultController uses DefaultKp, DefaultKi, DefaultKd and DefaultTarget,
// with the integral bounded by DefaultIntegralLimit.
func DefaultController() *Controller {
	c := NewController(DefaultKp, DefaultKi, DefaultKd, DefaultTarget)
	c.SetIntegralLimit(DefaultIntegralLimit)

	return c
}

// Update feeds the current fill level and returns the new delay in
// milliseconds.
func (c *Controller) Update(value float64) float64 {
	err := c.target - value

	c.integral += err
	if c.integralLimit > 0 {
		c.integral = max(-c.integralLimit, min(c.integral, c.integralLimit))
	}

	derivative := err - c.prevErr
	c.prevErr = err

	c.last = c.kp*err + c.ki*c.integral + c.kd*derivative

	return c.last
}

// Reset clears the accumulated state, keeping gains and target.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevErr = 0
	c.last = 0
}

func (c *Controller) SetGains(kp, ki, kd float64) {
	c.kp, c.ki, c.kd = kp, ki, kd
}

func (c *Controller) Gains() (kp, ki, kd float64) {
	return c.kp, c.ki, c.kd
}

func (c *Controller) SetTarget(target float64) {
	c.target = max(0, min(target, 100))
}

func (c *Controller) Target() float64 {
	return c.target
}

// SetIntegralLimit bounds the integral term to [-limit, limit]. A limit of
// zero or less removes the bound.
func (c *Controller) SetIntegralLimit(limit float64) {
	c.integralLimit = max(limit, 0)
}

// Last returns the delay computed by the most recent Update.
func (c *Controller) Last() float64 {
	return c.last
}
