package animate

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Display receives each animation frame.
type Display interface {
	SetValue(v int64)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(v int64)

func (f DisplayFunc) SetValue(v int64) { f(v) }

// Animator drives counters on a fixed-interval ticker.
type Animator struct {
	clock clockwork.Clock
}

// New creates an animator. A nil clock means the real clock.
func New(clock clockwork.Clock) *Animator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Animator{clock: clock}
}

// Animation is one running counter.
type Animation struct {
	done chan struct{}
}

// Done is closed when the final frame has been displayed or ctx ended.
func (a *Animation) Done() <-chan struct{} { return a.done }

// Animate counts d from zero to target over duration, one frame per
// TickInterval. Each call owns its ticker; nothing stops two animations from
// writing to the same display.
func (a *Animator) Animate(ctx context.Context, d Display, target float64, duration time.Duration) *Animation {
	c := NewCounter(target, duration)
	anim := &Animation{done: make(chan struct{})}
	ticker := a.clock.NewTicker(TickInterval)

	go func() {
		defer close(anim.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				v, done := c.Step()
				d.SetValue(v)
				if done {
					return
				}
			}
		}
	}()
	return anim
}
