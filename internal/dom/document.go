// Package dom is an in-memory HTML document with the small slice of browser
// behaviour the web pages rely on: selectors, class and style manipulation,
// event dispatch, intersection and scroll hooks.
//
// All methods are safe for concurrent use. Listeners are invoked without the
// document lock held, so they may freely call back into the document.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// ObserverOptions mirrors the IntersectionObserver init dictionary.
type ObserverOptions struct {
	Threshold  float64
	RootMargin string
}

type observation struct {
	target *html.Node
	opts   ObserverOptions
	fn     func(*Element)
}

// Document wraps a parsed HTML tree.
type Document struct {
	mu sync.Mutex

	root      *html.Node
	wrappers  map[*html.Node]*Element
	listeners map[*html.Node]map[string][]Listener
	docEvents map[string][]Listener
	observed  []observation
	scrolled  []*Element
	submitted []*Element
	active    *html.Node
	once      map[string]bool
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{
		root:      root,
		wrappers:  make(map[*html.Node]*Element),
		listeners: make(map[*html.Node]map[string][]Listener),
		docEvents: make(map[string][]Listener),
		once:      make(map[string]bool),
	}, nil
}

// ParseString is Parse for a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the document, returning "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// wrap returns the stable Element for n. d.mu must be held.
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if e, ok := d.wrappers[n]; ok {
		return e
	}
	e := &Element{doc: d, n: n}
	d.wrappers[n] = e
	return e
}

// Root returns the <html> element.
func (d *Document) Root() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(firstElement(d.root, "html"))
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(firstElement(d.root, "body"))
}

// QuerySelector returns the first element matching sel, or nil. An invalid
// selector matches nothing.
func (d *Document) QuerySelector(sel string) *Element {
	return d.query(d.root, sel)
}

// QuerySelectorAll returns every element matching sel in document order.
func (d *Document) QuerySelectorAll(sel string) []*Element {
	return d.queryAll(d.root, sel)
}

// GetElementByID returns the element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var found *html.Node
	walkElements(d.root, func(n *html.Node) bool {
		if v, ok := getAttr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

func (d *Document) query(scope *html.Node, sel string) *Element {
	s, err := Compile(sel)
	if err != nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var found *html.Node
	walkElements(scope, func(n *html.Node) bool {
		if s.Match(n) {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

func (d *Document) queryAll(scope *html.Node, sel string) []*Element {
	s, err := Compile(sel)
	if err != nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Element
	walkElements(scope, func(n *html.Node) bool {
		if s.Match(n) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out
}

// CreateElement returns a new detached element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atomOf(tag)}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(n)
}

// AddEventListener registers l for events of type typ reaching the document.
func (d *Document) AddEventListener(typ string, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docEvents[typ] = append(d.docEvents[typ], l)
}

// Dispatch delivers ev to target and, for bubbling events, to each ancestor
// and then the document. A nil target delivers to the document only. It
// returns false if a listener called PreventDefault.
//
// Default actions: an unprevented click on a submit button dispatches submit
// on its form, and an unprevented submit records the form as submitted.
func (d *Document) Dispatch(target *Element, ev *Event) bool {
	ev.Target = target

	d.mu.Lock()
	var path []*html.Node
	if target != nil {
		path = append(path, target.n)
		if ev.Bubbles() {
			for p := target.n.Parent; p != nil; p = p.Parent {
				if p.Type == html.ElementNode {
					path = append(path, p)
				}
			}
		}
	}
	d.mu.Unlock()

	for _, n := range path {
		d.mu.Lock()
		ls := append([]Listener(nil), d.listeners[n][ev.Type]...)
		cur := d.wrap(n)
		d.mu.Unlock()

		ev.CurrentTarget = cur
		for _, l := range ls {
			l(ev)
		}
		if ev.stopped {
			break
		}
	}

	if target == nil || (ev.Bubbles() && !ev.stopped) {
		d.mu.Lock()
		ls := append([]Listener(nil), d.docEvents[ev.Type]...)
		d.mu.Unlock()

		ev.CurrentTarget = nil
		for _, l := range ls {
			l(ev)
		}
	}

	if ev.defaultPrevented || target == nil {
		return !ev.defaultPrevented
	}

	switch ev.Type {
	case "click":
		if target.isSubmitButton() {
			if form := target.Form(); form != nil {
				d.Dispatch(form, NewEvent("submit"))
			}
		}
	case "submit":
		if target.Tag() == "form" {
			d.recordSubmit(target)
		}
	}
	return true
}

// Submit submits form without firing a submit event, like form.submit().
func (d *Document) Submit(form *Element) {
	d.recordSubmit(form)
}

func (d *Document) recordSubmit(form *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitted = append(d.submitted, form)
}

// Submitted returns the forms submitted so far.
func (d *Document) Submitted() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Element(nil), d.submitted...)
}

// Observe registers fn to run whenever el is reported as intersecting.
func (d *Document) Observe(el *Element, opts ObserverOptions, fn func(*Element)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observed = append(d.observed, observation{target: el.n, opts: opts, fn: fn})
}

// Observers returns the options of every observation registered on el.
func (d *Document) Observers(el *Element) []ObserverOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []ObserverOptions
	for _, o := range d.observed {
		if o.target == el.n {
			out = append(out, o.opts)
		}
	}
	return out
}

// Intersect reports el as entering the viewport and returns how many
// callbacks ran.
func (d *Document) Intersect(el *Element) int {
	d.mu.Lock()
	var fns []func(*Element)
	for _, o := range d.observed {
		if o.target == el.n {
			fns = append(fns, o.fn)
		}
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(el)
	}
	return len(fns)
}

// ScrollIntoView records el as scrolled to.
func (d *Document) ScrollIntoView(el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrolled = append(d.scrolled, el)
}

// Scrolled returns every element scrolled to, oldest first.
func (d *Document) Scrolled() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Element(nil), d.scrolled...)
}

// Focus makes el the active element.
func (d *Document) Focus(el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el == nil {
		d.active = nil
		return
	}
	d.active = el.n
}

// ActiveElement returns the focused element, or the body when nothing is
// focused.
func (d *Document) ActiveElement() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != nil {
		return d.wrap(d.active)
	}
	return d.wrap(firstElement(d.root, "body"))
}

// Once reports true the first time it is called with name.
func (d *Document) Once(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.once[name] {
		return false
	}
	d.once[name] = true
	return true
}
