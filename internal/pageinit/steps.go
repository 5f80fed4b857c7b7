package pageinit

import (
	"strings"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/dom"
	"github.com/tinytelemetry/ecotrack/internal/notify"
)

const (
	// ThemeKey is the preference holding the saved theme.
	ThemeKey = "theme"

	LoadingResetDelay   = 2 * time.Second
	ProgressRevealDelay = 100 * time.Millisecond

	loadingHTML = `<span class="loading"></span> Loading...`
)

// ProgressObserverOptions are used for the progress-bar reveal.
var ProgressObserverOptions = dom.ObserverOptions{
	Threshold:  0.5,
	RootMargin: "0px 0px -50px 0px",
}

// DefaultSteps returns the standard page behaviours.
func DefaultSteps() []Step {
	return []Step{
		{Name: "tooltips", Static: true, Run: activateToggles},
		{Name: "smooth-scroll", Run: smoothScroll},
		{Name: "form-validation", Run: formValidation},
		{Name: "alert-autohide", Run: alertAutoHide},
		{Name: "submit-loading", Run: submitLoading},
		{Name: "progress-reveal", Run: progressReveal},
		{Name: "card-hover", Run: cardHover},
		{Name: "keyboard", Run: keyboardShortcuts},
		{Name: "table-overflow", Static: true, Run: tableOverflow},
		{Name: "theme", Static: true, Run: restoreTheme},
	}
}

func activateToggles(p *Page) {
	for _, kind := range []string{"tooltip", "popover"} {
		for _, el := range p.Doc.QuerySelectorAll(`[data-bs-toggle="` + kind + `"]`) {
			el.SetAttr("data-bs-initialized", kind)
		}
	}
}

func smoothScroll(p *Page) {
	for _, a := range p.Doc.QuerySelectorAll(`a[href^="#"]`) {
		a := a
		a.AddEventListener("click", func(ev *dom.Event) {
			ev.PreventDefault()
			href, _ := a.Attr("href")
			ScrollToElement(p.Doc, strings.TrimPrefix(href, "#"))
		})
	}
}

func formValidation(p *Page) {
	for _, form := range p.Doc.QuerySelectorAll(".needs-validation") {
		form := form
		form.AddEventListener("submit", func(ev *dom.Event) {
			if !form.CheckValidity() {
				ev.PreventDefault()
				ev.StopPropagation()
			}
			form.AddClass("was-validated")
		})
	}
}

func alertAutoHide(p *Page) {
	for _, el := range p.Doc.QuerySelectorAll(".alert") {
		notify.ScheduleRemoval(p.Clock, notify.AutoDismissDelay, el.Remove)
	}
}

func submitLoading(p *Page) {
	for _, btn := range p.Doc.QuerySelectorAll(`.btn[type="submit"]`) {
		btn := btn
		btn.AddEventListener("click", func(*dom.Event) {
			form := btn.Form()
			if form == nil || !form.CheckValidity() {
				return
			}
			original := btn.InnerHTML()
			ShowLoading(btn)
			p.Clock.AfterFunc(LoadingResetDelay, func() {
				HideLoading(btn, original)
			})
		})
	}
}

func progressReveal(p *Page) {
	for _, el := range p.Doc.QuerySelectorAll(".progress") {
		p.Doc.Observe(el, ProgressObserverOptions, func(target *dom.Element) {
			bar := target.QuerySelector(".progress-bar")
			if bar == nil {
				return
			}
			width := bar.Style("width")
			bar.SetStyle("width", "0%")
			p.Clock.AfterFunc(ProgressRevealDelay, func() {
				bar.SetStyle("width", width)
			})
		})
	}
}

func cardHover(p *Page) {
	for _, card := range p.Doc.QuerySelectorAll(".card") {
		card := card
		card.AddEventListener("mouseenter", func(*dom.Event) {
			card.SetStyle("transform", "translateY(-5px)")
		})
		card.AddEventListener("mouseleave", func(*dom.Event) {
			card.SetStyle("transform", "translateY(0)")
		})
	}
}

func keyboardShortcuts(p *Page) {
	p.Doc.AddEventListener("keydown", func(ev *dom.Event) {
		if (ev.CtrlKey || ev.MetaKey) && ev.Key == "Enter" {
			if active := p.Doc.ActiveElement(); active != nil {
				if form := active.Form(); form != nil {
					p.Doc.Submit(form)
				}
			}
		}
		if ev.Key == "Escape" {
			if modal := p.Doc.QuerySelector(".modal.show"); modal != nil {
				HideModal(modal)
			}
		}
	})
}

func tableOverflow(p *Page) {
	for _, wrapper := range p.Doc.QuerySelectorAll(".table-responsive") {
		if wrapper.QuerySelector(".table") != nil {
			wrapper.SetStyle("overflow-x", "auto")
		}
	}
}

func restoreTheme(p *Page) {
	if p.Prefs == nil {
		return
	}
	theme, ok := p.Prefs.GetString(ThemeKey)
	if !ok || theme == "" {
		return
	}
	if root := p.Doc.Root(); root != nil {
		root.SetAttr("data-theme", theme)
	}
}

// ShowLoading disables el and replaces its content with a spinner.
func ShowLoading(el *dom.Element) {
	el.SetDisabled(true)
	_ = el.SetInnerHTML(loadingHTML)
}

// HideLoading re-enables el and restores its original content.
func HideLoading(el *dom.Element, original string) {
	el.SetDisabled(false)
	_ = el.SetInnerHTML(original)
}

// ScrollToElement scrolls to the element with the given id. It reports false
// when no such element exists.
func ScrollToElement(doc *dom.Document, id string) bool {
	el := doc.GetElementByID(id)
	if el == nil {
		return false
	}
	el.ScrollIntoView()
	return true
}

// HideModal closes an open modal.
func HideModal(modal *dom.Element) {
	modal.RemoveClass("show")
	modal.SetStyle("display", "none")
	modal.SetAttr("aria-hidden", "true")
}
