package footprint

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCO2 renders v with one decimal, e.g. "12.3 kg CO2e".
func FormatCO2(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " kg CO2e"
}

// FormatPoints renders n with thousands separators.
func FormatPoints(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatTons renders v with at most one decimal and no trailing ".0";
// zero is "0.0".
func FormatTons(v float64) string {
	if v == 0 {
		return "0.0"
	}
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}
