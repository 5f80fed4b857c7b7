// Package animate interpolates a displayed integer from zero up to a target.
package animate

import (
	"math"
	"time"
)

const (
	// TickInterval approximates one frame at 60Hz.
	TickInterval = 16 * time.Millisecond
	// DefaultDuration is used when Animate is given a non-positive duration.
	DefaultDuration = time.Second

	// maxTarget is the largest magnitude a float64 holds as an exact integer.
	maxTarget = 1 << 53
)

// Counter is the per-invocation animation state. The accumulated value stays
// in floating point; only the displayed value is floored.
type Counter struct {
	current   float64
	target    float64
	increment float64
	done      bool
}

// NewCounter prepares a counter that reaches target after roughly duration.
// A NaN or infinite target counts to 0; larger magnitudes are clamped.
func NewCounter(target float64, duration time.Duration) *Counter {
	switch {
	case math.IsNaN(target) || math.IsInf(target, 0):
		target = 0
	case target > maxTarget:
		target = maxTarget
	case target < -maxTarget:
		target = -maxTarget
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	ticks := float64(duration) / float64(TickInterval)
	return &Counter{
		target:    target,
		increment: target / ticks,
	}
}

// Step advances one tick and returns the value to display. Once current
// reaches target it is clamped, the final frame shows exactly target, and done
// is true.
func (c *Counter) Step() (shown int64, done bool) {
	if c.done {
		return int64(math.Floor(c.target)), true
	}
	c.current += c.increment
	if c.current >= c.target {
		c.current = c.target
		c.done = true
	}
	return int64(math.Floor(c.current)), c.done
}

// Done reports whether the counter reached its target.
func (c *Counter) Done() bool { return c.done }

// Frames runs a counter to completion and returns every displayed value.
func Frames(target float64, duration time.Duration) []int64 {
	c := NewCounter(target, duration)
	var out []int64
	for {
		v, done := c.Step()
		out = append(out, v)
		if done {
			return out
		}
	}
}
