package tui

import (
	"fmt"
	"strings"

	"github.com/tinytelemetry/ecotrack/internal/footprint"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

const (
	chartHeight = 8
	legendWidth = 22
)

// renderEmissionsChart draws one bar per category with a legend of values in
// tons of CO2 per year.
func renderEmissionsChart(o footprint.Overall, width int) string {
	chartWidth := width - legendWidth - 2
	if chartWidth < 20 {
		chartWidth = 20
	}
	barWidth := (chartWidth - len(footprint.Categories) + 1) / len(footprint.Categories)
	if barWidth < 1 {
		barWidth = 1
	}

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
	)

	var legend []string
	for _, c := range footprint.Categories {
		v := o.Value(c)
		style := lipgloss.NewStyle().Foreground(categoryColors[c]).Background(categoryColors[c])
		bc.Push(barchart.BarData{
			Label:  c.Title(),
			Values: []barchart.BarValue{{Name: string(c), Value: v, Style: style}},
		})
		legend = append(legend, lipgloss.NewStyle().
			Foreground(categoryColors[c]).
			Render(fmt.Sprintf("%-8s %8.2f t", c.Title()+":", v)))
	}
	legend = append(legend,
		lipgloss.NewStyle().Foreground(ColorGray).Render(strings.Repeat("─", 19)),
		titleStyle.Render(fmt.Sprintf("%-8s %8.2f t", "Total:", o.Total())),
	)

	bc.Draw()
	return lipgloss.JoinHorizontal(lipgloss.Top, bc.View(), "  ", strings.Join(legend, "\n"))
}
