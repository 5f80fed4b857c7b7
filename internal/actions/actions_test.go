package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	c := Catalog()
	require.Len(t, c, 4)
	assert.Equal(t, "short_walk", c[0].ID)

	c[0].Title = "changed"
	assert.Equal(t, "Walk for short distances", Catalog()[0].Title)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	a, err := Lookup("tap_water")
	require.NoError(t, err)
	assert.Equal(t, 0.2, a.CO2Kg)
	assert.Equal(t, "200g", a.Quantity())
	assert.Equal(t, int64(2), a.Points())

	_, err = Lookup("fly_less")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kg   float64
		want int64
	}{
		{0.4, 4},
		{0.7, 7},
		{1.0, 10},
		{0.05, 0},
		{2.59, 25},
		{0, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Points(tt.kg), "kg=%v", tt.kg)
	}
}

func TestNextHabitProgressCapped(t *testing.T) {
	t.Parallel()

	p := 0
	for i := 0; i < 10; i++ {
		p = NextHabitProgress(p)
	}
	assert.Equal(t, HabitGoal, p)
	assert.Equal(t, 1, NextHabitProgress(0))
	assert.Equal(t, 1, NextHabitProgress(-3))
}
