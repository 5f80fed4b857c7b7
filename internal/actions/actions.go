// Package actions is the catalog of eco actions and the points and habit
// rules applied when one is completed.
package actions

import (
	"errors"
	"fmt"
	"math"
)

const (
	// PointsPerKg is awarded per kilogram of CO2e saved.
	PointsPerKg = 10
	// HabitGoal is the progress at which a habit card is full.
	HabitGoal = 4
	// RecentLimit is how many completed actions the progress page lists.
	RecentLimit = 10
)

var ErrUnknownAction = errors.New("unknown action")

// Action is one thing a user can do to save CO2e.
type Action struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	CO2Kg   float64 `json:"co2_kg"`
	Summary string  `json:"summary"`
}

// Points is the reward for completing a.
func (a Action) Points() int64 {
	return Points(a.CO2Kg)
}

// Quantity renders the saving in grams, e.g. "400g".
func (a Action) Quantity() string {
	return fmt.Sprintf("%dg", int64(math.Round(a.CO2Kg*1000)))
}

var catalog = []Action{
	{
		ID:      "short_walk",
		Title:   "Walk for short distances",
		CO2Kg:   0.4,
		Summary: "Leave the car at home for trips under 2 km.",
	},
	{
		ID:      "tap_water",
		Title:   "Drink Tap water instead of bottled",
		CO2Kg:   0.2,
		Summary: "Refill a bottle instead of buying a new one.",
	},
	{
		ID:      "reduce_food_waste",
		Title:   "Reduce food waste",
		CO2Kg:   0.5,
		Summary: "Plan meals and use up leftovers.",
	},
	{
		ID:      "clean_up",
		Title:   "Join a community clean-up",
		CO2Kg:   1.0,
		Summary: "Pick up litter in your neighbourhood.",
	},
}

// Catalog returns every action in display order.
func Catalog() []Action {
	return append([]Action(nil), catalog...)
}

// Lookup finds an action by id.
func Lookup(id string) (Action, error) {
	for _, a := range catalog {
		if a.ID == id {
			return a, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, id)
}

// Points converts kilograms saved into points, truncating toward zero.
// Negative savings earn nothing.
func Points(co2Kg float64) int64 {
	if co2Kg <= 0 {
		return 0
	}
	// Round first so 0.7*10 lands on 7, not 6.999.
	return int64(math.Round(co2Kg*PointsPerKg*1e6) / 1e6)
}

// NextHabitProgress is the habit progress after one more completion.
func NextHabitProgress(current int) int {
	if current < 0 {
		current = 0
	}
	if current >= HabitGoal {
		return HabitGoal
	}
	return current + 1
}
