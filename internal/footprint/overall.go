package footprint

import (
	"fmt"
	"math"
)

const (
	// MaxBarValue is the per-category value drawn as a full bar.
	MaxBarValue = 2.5
	// MinBarFraction keeps empty categories visible.
	MinBarFraction = 0.02

	squareMetersPerTon   = 3.0
	squareMetersPerBoard = 18.0
)

// Overall is the per-category breakdown of a user's footprint.
type Overall struct {
	Home   float64 `json:"home"`
	Travel float64 `json:"travel"`
	Food   float64 `json:"food"`
	Others float64 `json:"others"`
}

// NewOverall builds an Overall from per-category values. Missing categories
// count as 0.
func NewOverall(values map[Category]float64) Overall {
	return Overall{
		Home:   values[Home],
		Travel: values[Travel],
		Food:   values[Food],
		Others: values[Others],
	}
}

// Value returns the value for c.
func (o Overall) Value(c Category) float64 {
	switch c {
	case Home:
		return o.Home
	case Travel:
		return o.Travel
	case Food:
		return o.Food
	case Others:
		return o.Others
	}
	return 0
}

// Total sums every category.
func (o Overall) Total() float64 {
	return o.Home + o.Travel + o.Food + o.Others
}

// Billboards is the area of arctic sea ice, in 18 m² billboards, the total
// would melt at 3 m² per tonne. It is at least 1 for any positive total.
func (o Overall) Billboards() int {
	return Billboards(o.Total())
}

// Billboards converts tonnes of CO2e to billboards of melted sea ice.
func Billboards(tons float64) int {
	if tons <= 0 {
		return 0
	}
	n := int(math.Ceil(tons * squareMetersPerTon / squareMetersPerBoard))
	if n < 1 {
		return 1
	}
	return n
}

// Description is the impact sentence shown under the total.
func (o Overall) Description() string {
	total := o.Total()
	if total <= 0 {
		return "Complete surveys to calculate your carbon impact"
	}
	n := Billboards(total)
	unit := "billboards"
	if n == 1 {
		unit = "billboard"
	}
	return fmt.Sprintf("%s tons of CO2e would melt an area of arctic sea ice the size of %d %s",
		FormatTons(total), n, unit)
}

// BarFraction is the share of a full bar to draw for v.
func BarFraction(v float64) float64 {
	if v <= 0 {
		return MinBarFraction
	}
	return math.Min(1, v/MaxBarValue)
}
