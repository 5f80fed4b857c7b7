package tui

import tea "github.com/charmbracelet/bubbletea"

// Page is one top-level screen routed by App.
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// PageNav is returned from Update to switch to another page.
type PageNav struct {
	PageID string
}
