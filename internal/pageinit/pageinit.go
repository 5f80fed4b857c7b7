// Package pageinit wires the one-time behaviours every page gets once its
// document is ready.
package pageinit

import (
	"github.com/tinytelemetry/ecotrack/internal/dom"
	"github.com/tinytelemetry/ecotrack/internal/prefs"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	readyKey   = "pageinit:ready"
	prepareKey = "pageinit:prepare"
)

// Page is the environment a step runs against.
type Page struct {
	Doc   *dom.Document
	Clock clockwork.Clock
	Prefs *prefs.Store
	Log   *zap.Logger
}

func (p Page) withDefaults() *Page {
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return &p
}

// Step is one independent registration.
type Step struct {
	Name string
	// Static steps only touch markup; they need no listeners or timers and
	// are safe to run while rendering on the server.
	Static bool
	Run    func(p *Page)
}

// Sequencer runs a flat list of steps.
type Sequencer struct {
	steps []Step
}

// New creates a sequencer. With no steps it uses DefaultSteps.
func New(steps ...Step) *Sequencer {
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	return &Sequencer{steps: steps}
}

// Steps returns the registered steps in order.
func (s *Sequencer) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Ready runs every step against the page. It runs at most once per document
// and reports whether this call did the work.
func (s *Sequencer) Ready(p Page) bool {
	if !p.Doc.Once(readyKey) {
		return false
	}
	s.run(p.withDefaults(), false)
	return true
}

// Prepare runs only the static steps, at most once per document.
func (s *Sequencer) Prepare(p Page) bool {
	if !p.Doc.Once(prepareKey) {
		return false
	}
	s.run(p.withDefaults(), true)
	return true
}

func (s *Sequencer) run(p *Page, staticOnly bool) {
	for _, st := range s.steps {
		if staticOnly && !st.Static {
			continue
		}
		runStep(p, st)
	}
}

// runStep isolates a step so one failure does not skip the others.
func runStep(p *Page, st Step) {
	defer func() {
		if r := recover(); r != nil {
			p.Log.Error("pageinit: step failed", zap.String("step", st.Name), zap.Any("panic", r))
		}
	}()
	st.Run(p)
}
