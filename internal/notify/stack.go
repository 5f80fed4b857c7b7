package notify

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Stack is an in-memory Container, newest alert first. It is its own Surface.
type Stack struct {
	mu     sync.Mutex
	alerts []Alert
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

func (s *Stack) FindContainer() (Container, bool) { return s, true }

func (s *Stack) Prepend(a Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append([]Alert{a}, s.alerts...)
}

func (s *Stack) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// Alerts returns a snapshot of the attached alerts.
func (s *Stack) Alerts() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.alerts...)
}

// Len returns the number of attached alerts.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

// Board keeps one Stack per session. A session's stack is dropped as soon
// as its last alert is removed.
type Board struct {
	mu     sync.Mutex
	stacks map[string]*Stack
	clock  clockwork.Clock
	log    *zap.Logger
}

// NewBoard creates an empty board.
func NewBoard(opts ...Option) *Board {
	o := buildOptions(opts)
	return &Board{
		stacks: make(map[string]*Stack),
		clock:  o.clock,
		log:    o.log,
	}
}

// sessionContainer routes one session's alerts through the board so that
// stacks are created and pruned under b.mu.
type sessionContainer struct {
	board   *Board
	session string
}

func (c sessionContainer) FindContainer() (Container, bool) { return c, true }

func (c sessionContainer) Prepend(a Alert) {
	b := c.board
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stacks[c.session]
	if !ok {
		s = NewStack()
		b.stacks[c.session] = s
	}
	s.Prepend(a)
}

func (c sessionContainer) Remove(id string) bool {
	return c.board.remove(c.session, id)
}

func (b *Board) remove(session, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stacks[session]
	if !ok {
		return false
	}
	removed := s.Remove(id)
	if s.Len() == 0 {
		delete(b.stacks, session)
	}
	return removed
}

// Emitter returns an emitter bound to the session's stack.
func (b *Board) Emitter(session string) *Emitter {
	return NewEmitter(sessionContainer{board: b, session: session}, WithClock(b.clock), WithLogger(b.log))
}

// Alerts returns the session's attached alerts.
func (b *Board) Alerts(session string) []Alert {
	b.mu.Lock()
	s, ok := b.stacks[session]
	b.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Alerts()
}

// Dismiss removes one alert manually.
func (b *Board) Dismiss(session, id string) bool {
	return b.remove(session, id)
}

// Sessions returns the number of sessions currently holding alerts.
func (b *Board) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.stacks)
}
