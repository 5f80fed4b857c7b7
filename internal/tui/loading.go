package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

// SpinnerTickMsg triggers a re-render while the first load is in flight.
type SpinnerTickMsg struct{}

// renderLoadingPlaceholder renders a centered loading indicator. The frame is
// picked from now so it animates on re-render.
func renderLoadingPlaceholder(now time.Time, width, height int) string {
	frame := spinnerFrames[now.UnixMilli()/spinnerInterval.Milliseconds()%int64(len(spinnerFrames))]

	text := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true).
		Render(frame + " Loading your footprint...")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}
