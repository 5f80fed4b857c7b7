package dom

import (
	"github.com/tinytelemetry/ecotrack/internal/notify"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AlertIDAttr carries the notify.Alert id on rendered alert elements.
const AlertIDAttr = "data-alert-id"

// FindContainer returns the first .container element as an alert container.
func (d *Document) FindContainer() (notify.Container, bool) {
	el := d.QuerySelector(".container")
	if el == nil {
		return nil, false
	}
	return &alertContainer{doc: d, el: el}, true
}

type alertContainer struct {
	doc *Document
	el  *Element
}

// Prepend renders a dismissible alert as the container's first child. The
// message is inserted as text, never parsed as markup.
func (c *alertContainer) Prepend(a notify.Alert) {
	d := c.doc

	d.mu.Lock()
	div := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: "alert alert-" + a.Kind.CSSClass() + " alert-dismissible fade show"},
			{Key: "role", Val: "alert"},
			{Key: AlertIDAttr, Val: a.ID},
		},
	}
	div.AppendChild(&html.Node{Type: html.TextNode, Data: a.Message})
	btn := &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr: []html.Attribute{
			{Key: "type", Val: "button"},
			{Key: "class", Val: "btn-close"},
			{Key: "data-bs-dismiss", Val: "alert"},
		},
	}
	div.AppendChild(btn)
	c.el.n.InsertBefore(div, c.el.n.FirstChild)
	alertEl := d.wrap(div)
	closeEl := d.wrap(btn)
	d.mu.Unlock()

	closeEl.AddEventListener("click", func(*Event) {
		alertEl.Remove()
	})
}

// Remove detaches the alert with the given id. Removing an alert that is
// already gone reports false.
func (c *alertContainer) Remove(id string) bool {
	d := c.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	var found *html.Node
	walkElements(c.el.n, func(n *html.Node) bool {
		if v, ok := getAttr(n, AlertIDAttr); ok && v == id {
			found = n
			return false
		}
		return true
	})
	if found == nil || found.Parent == nil {
		return false
	}
	found.Parent.RemoveChild(found)
	return true
}
