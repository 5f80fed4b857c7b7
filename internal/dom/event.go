package dom

// Event is dispatched to listeners on an element and its ancestors.
type Event struct {
	Type    string
	Key     string
	CtrlKey bool
	MetaKey bool

	Target        *Element
	CurrentTarget *Element

	defaultPrevented bool
	stopped          bool
}

// Listener handles an event.
type Listener func(ev *Event)

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// KeyEvent creates a keydown event.
func KeyEvent(key string, ctrl, meta bool) *Event {
	return &Event{Type: "keydown", Key: key, CtrlKey: ctrl, MetaKey: meta}
}

// PreventDefault cancels the default action, such as recording a form
// submission.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Bubbles reports whether the event type propagates to ancestors.
func (e *Event) Bubbles() bool {
	switch e.Type {
	case "mouseenter", "mouseleave", "focus", "blur":
		return false
	}
	return true
}
