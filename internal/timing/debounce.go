// Package timing holds small clock-driven helpers.
package timing

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer delays fn until wait has passed without another Trigger.
type Debouncer struct {
	clock clockwork.Clock
	wait  time.Duration
	fn    func()

	mu    sync.Mutex
	timer clockwork.Timer
}

// Debounce returns a Debouncer for fn. A nil clock means the real clock.
func Debounce(clock clockwork.Clock, wait time.Duration, fn func()) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock, wait: wait, fn: fn}
}

// Trigger restarts the wait. fn runs once, on its own goroutine, after the
// last Trigger of a burst.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.wait, d.fn)
}

// Stop cancels a pending call. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}
