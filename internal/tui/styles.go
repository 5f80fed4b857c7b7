package tui

import (
	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/notify"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorNavy  = lipgloss.Color("#0B1F3A")
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorGray  = lipgloss.Color("8")
	ColorGreen = lipgloss.Color("#49E209")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	pointsStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)
)

// categoryColors are the bar colors of the emissions chart.
var categoryColors = map[footprint.Category]lipgloss.Color{
	footprint.Home:   lipgloss.Color("208"),
	footprint.Travel: lipgloss.Color("39"),
	footprint.Food:   lipgloss.Color("76"),
	footprint.Others: lipgloss.Color("170"),
}

func alertStyle(k notify.Kind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(ColorWhite)
	switch k {
	case notify.KindSuccess:
		return base.Background(lipgloss.Color("28"))
	case notify.KindError:
		return base.Background(lipgloss.Color("160"))
	default:
		return base.Background(lipgloss.Color("25"))
	}
}

// renderBranding renders "EcoTrack" with a green to light blue gradient.
func renderBranding() string {
	colors := []string{
		"#49E209", "#3FDF1C", "#35DD2F", "#21D955",
		"#0DD47B", "#00D0A1", "#00CDB4", "#00CAC7",
	}
	var out string
	for i, ch := range "EcoTrack" {
		out += lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(lipgloss.Color(colors[i])).
			Bold(true).
			Render(string(ch))
	}
	return out
}
