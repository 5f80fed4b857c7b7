package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Container holds attached alerts, newest first.
type Container interface {
	// Prepend attaches a at the top of the container.
	Prepend(a Alert)
	// Remove detaches the alert with the given id. It reports false when the
	// alert was already gone.
	Remove(id string) bool
}

// Surface locates the alert container.
type Surface interface {
	FindContainer() (Container, bool)
}

// Emitter creates alerts on a surface and schedules their removal.
type Emitter struct {
	surface Surface
	clock   clockwork.Clock
	log     *zap.Logger
}

// Option configures an Emitter or Board.
type Option func(*options)

type options struct {
	clock clockwork.Clock
	log   *zap.Logger
}

// WithClock sets the clock used for auto-dismiss timers.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{clock: clockwork.NewRealClock(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewEmitter creates an emitter for the given surface.
func NewEmitter(surface Surface, opts ...Option) *Emitter {
	o := buildOptions(opts)
	return &Emitter{surface: surface, clock: o.clock, log: o.log}
}

// Notify attaches a new alert at the top of the container and schedules its
// removal after AutoDismissDelay. Older alerts keep their own timers.
func (e *Emitter) Notify(message string, kind Kind) (Alert, error) {
	kind, err := ParseKind(string(kind))
	if err != nil {
		return Alert{}, err
	}
	container, ok := e.surface.FindContainer()
	if !ok || container == nil {
		e.log.Warn("notify: no alert container", zap.String("message", message))
		return Alert{}, ErrNoContainer
	}

	a := Alert{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: e.clock.Now(),
	}
	container.Prepend(a)
	ScheduleRemoval(e.clock, AutoDismissDelay, func() bool { return container.Remove(a.ID) })
	return a, nil
}

// Success emits a success alert.
func (e *Emitter) Success(message string) (Alert, error) { return e.Notify(message, KindSuccess) }

// Error emits an error alert.
func (e *Emitter) Error(message string) (Alert, error) { return e.Notify(message, KindError) }

// Info emits an info alert.
func (e *Emitter) Info(message string) (Alert, error) { return e.Notify(message, KindInfo) }

// ScheduleRemoval runs remove once after delay. remove must tolerate the
// target having been detached already.
func ScheduleRemoval(clock clockwork.Clock, delay time.Duration, remove func() bool) clockwork.Timer {
	return clock.AfterFunc(delay, func() { _ = remove() })
}
