package dom

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EmailPattern is the pattern email inputs are validated against.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Element is a handle on one element node. Handles are stable: the same node
// always yields the same *Element.
type Element struct {
	doc *Document
	n   *html.Node
}

func atomOf(tag string) atom.Atom {
	return atom.Lookup([]byte(tag))
}

func (e *Element) Tag() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.n.Data
}

func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return getAttr(e.n, name)
}

func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.n, name, value)
}

func (e *Element) RemoveAttr(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	removeAttr(e.n, name)
}

func (e *Element) Classes() []string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return classList(e.n)
}

func (e *Element) HasClass(class string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return hasClass(e.n, class)
}

func (e *Element) AddClass(classes ...string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	list := classList(e.n)
	for _, c := range classes {
		if !hasClass(e.n, c) {
			list = append(list, c)
			setAttr(e.n, "class", strings.Join(list, " "))
		}
	}
}

func (e *Element) RemoveClass(classes ...string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	drop := make(map[string]bool, len(classes))
	for _, c := range classes {
		drop[c] = true
	}
	var keep []string
	for _, c := range classList(e.n) {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	setAttr(e.n, "class", strings.Join(keep, " "))
}

// Style returns the inline value of a CSS property, e.g. "overflow-x".
func (e *Element) Style(prop string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	raw, _ := getAttr(e.n, "style")
	prop = strings.ToLower(prop)
	for _, d := range parseStyle(raw) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// SetStyle sets an inline CSS property. An empty value removes it.
func (e *Element) SetStyle(prop, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	raw, _ := getAttr(e.n, "style")
	prop = strings.ToLower(prop)
	decls := parseStyle(raw)
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.prop == prop {
			if value != "" && !replaced {
				out = append(out, styleDecl{prop: prop, value: value})
				replaced = true
			}
			continue
		}
		out = append(out, d)
	}
	if value != "" && !replaced {
		out = append(out, styleDecl{prop: prop, value: value})
	}
	if len(out) == 0 {
		removeAttr(e.n, "style")
		return
	}
	setAttr(e.n, "style", formatStyle(out))
}

// Text returns the concatenated text of the subtree.
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return textContent(e.n)
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(s string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	removeChildren(e.n)
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// SetValue displays v as the element's text. It lets an element act as the
// target of a counter animation.
func (e *Element) SetValue(v int64) {
	e.SetText(strconv.FormatInt(v, 10))
}

// InnerHTML renders the children.
func (e *Element) InnerHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// SetInnerHTML replaces the children with the parsed fragment.
func (e *Element) SetInnerHTML(s string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	ctx := e.n
	if ctx.DataAtom == 0 {
		// ParseFragment needs a known context element.
		ctx = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return fmt.Errorf("dom: parse fragment: %w", err)
	}
	removeChildren(e.n)
	for _, n := range nodes {
		detach(n)
		e.n.AppendChild(n)
	}
	return nil
}

func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}

// Parent returns the parent element, or nil.
func (e *Element) Parent() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Attached reports whether e is still part of the document tree.
func (e *Element) Attached() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for p := e.n; p != nil; p = p.Parent {
		if p == e.doc.root {
			return true
		}
	}
	return false
}

// Remove detaches e from its parent. It reports false if e had no parent.
func (e *Element) Remove() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.n.Parent == nil {
		return false
	}
	e.n.Parent.RemoveChild(e.n)
	return true
}

// Prepend inserts child as the first child of e.
func (e *Element) Prepend(child *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	detach(child.n)
	e.n.InsertBefore(child.n, e.n.FirstChild)
}

// AppendChild inserts child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	detach(child.n)
	e.n.AppendChild(child.n)
}

// Children returns the element children.
func (e *Element) Children() []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// QuerySelector searches the descendants of e.
func (e *Element) QuerySelector(sel string) *Element {
	return e.doc.query(e.n, sel)
}

// QuerySelectorAll searches the descendants of e.
func (e *Element) QuerySelectorAll(sel string) []*Element {
	return e.doc.queryAll(e.n, sel)
}

// Form returns the form owning e: the form itself, or the nearest form
// ancestor.
func (e *Element) Form() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for p := e.n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "form" {
			return e.doc.wrap(p)
		}
	}
	return nil
}

// AddEventListener registers l for events of type typ on e.
func (e *Element) AddEventListener(typ string, l Listener) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	m := e.doc.listeners[e.n]
	if m == nil {
		m = make(map[string][]Listener)
		e.doc.listeners[e.n] = m
	}
	m[typ] = append(m[typ], l)
}

// Focus makes e the document's active element.
func (e *Element) Focus() { e.doc.Focus(e) }

// ScrollIntoView scrolls the document to e.
func (e *Element) ScrollIntoView() { e.doc.ScrollIntoView(e) }

func (e *Element) isSubmitButton() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	typ, _ := getAttr(e.n, "type")
	switch e.n.Data {
	case "button":
		return typ == "" || strings.EqualFold(typ, "submit")
	case "input":
		return strings.EqualFold(typ, "submit")
	}
	return false
}

// CheckValidity applies constraint validation. For a form every field is
// checked. A field is invalid when it is required and empty, or when it is
// an email input whose value does not match EmailPattern.
func (e *Element) CheckValidity() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.n.Data != "form" {
		return fieldValid(e.n)
	}
	valid := true
	walkElements(e.n, func(n *html.Node) bool {
		if !fieldValid(n) {
			valid = false
			return false
		}
		return true
	})
	return valid
}

func fieldValid(n *html.Node) bool {
	switch n.Data {
	case "input", "select", "textarea":
	default:
		return true
	}
	if _, disabled := getAttr(n, "disabled"); disabled {
		return true
	}
	value := fieldValue(n)
	if _, required := getAttr(n, "required"); required && strings.TrimSpace(value) == "" {
		return false
	}
	if typ, _ := getAttr(n, "type"); n.Data == "input" && strings.EqualFold(typ, "email") && value != "" {
		return EmailPattern.MatchString(value)
	}
	return true
}

func fieldValue(n *html.Node) string {
	switch n.Data {
	case "textarea":
		return textContent(n)
	case "select":
		var first, selected *html.Node
		walkElements(n, func(c *html.Node) bool {
			if c.Data != "option" {
				return true
			}
			if first == nil {
				first = c
			}
			if _, ok := getAttr(c, "selected"); ok {
				selected = c
				return false
			}
			return true
		})
		opt := selected
		if opt == nil {
			opt = first
		}
		if opt == nil {
			return ""
		}
		if v, ok := getAttr(opt, "value"); ok {
			return v
		}
		return textContent(opt)
	}
	v, _ := getAttr(n, "value")
	return v
}
