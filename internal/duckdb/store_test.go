package duckdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"

	"github.com/jonboulle/clockwork"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := NewStore("", opts...)
	if err != nil {
		t.Fatalf("NewStore(\"\") failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *Store, email string) model.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), model.User{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestCreateUserAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, " Ada@Example.com ")
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if u.Email != "ada@example.com" {
		t.Errorf("Email = %q, want normalized", u.Email)
	}

	byEmail, err := store.UserByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if byEmail.ID != u.ID || byEmail.FirstName != "Ada" || byEmail.PasswordHash != "hash" {
		t.Errorf("UserByEmail = %+v", byEmail)
	}

	byID, err := store.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if byID.Email != u.Email {
		t.Errorf("UserByID email = %q", byID.Email)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "ada@example.com")

	_, err := store.CreateUser(context.Background(), model.User{Email: "ADA@example.com", PasswordHash: "x", FirstName: "A", LastName: "B"})
	if !errors.Is(err, model.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestUserNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.UserByID(context.Background(), "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("UserByID err = %v, want ErrNotFound", err)
	}
	if _, err := store.UserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("UserByEmail err = %v, want ErrNotFound", err)
	}
}

func TestCategoryEmissionsUsesLatestSurvey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, store, "ada@example.com")
	other := createTestUser(t, store, "bob@example.com")

	save := func(userID string, c footprint.Category, v float64) {
		t.Helper()
		if _, err := store.SaveSurvey(ctx, model.Survey{UserID: userID, Category: c, CO2Emission: v,
			Answers: footprint.Answers{"home_size": "small"}}); err != nil {
			t.Fatalf("SaveSurvey: %v", err)
		}
	}
	save(u.ID, footprint.Home, 8)
	save(u.ID, footprint.Home, 6)
	save(u.ID, footprint.Travel, 11.8)
	save(other.ID, footprint.Food, 5.5)

	got, err := store.CategoryEmissions(ctx, u.ID)
	if err != nil {
		t.Fatalf("CategoryEmissions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d categories, want 2: %v", len(got), got)
	}
	if got[footprint.Home] != 6 {
		t.Errorf("home = %v, want latest value 6", got[footprint.Home])
	}
	if got[footprint.Travel] != 11.8 {
		t.Errorf("travel = %v, want 11.8", got[footprint.Travel])
	}
	if _, ok := got[footprint.Food]; ok {
		t.Error("food belongs to another user")
	}
}

func TestCompleteActionUpdatesTotalsAndHabit(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, WithClock(clock))
	ctx := context.Background()
	u := createTestUser(t, store, "ada@example.com")

	walk, _ := actions.Lookup("short_walk")
	water, _ := actions.Lookup("tap_water")

	var last model.ActionResult
	for i := 0; i < 6; i++ {
		res, err := store.CompleteAction(ctx, u.ID, walk, time.Time{})
		if err != nil {
			t.Fatalf("CompleteAction: %v", err)
		}
		clock.Advance(time.Minute)
		last = res
	}
	if last.Points != 24 {
		t.Errorf("points = %d, want 24", last.Points)
	}
	if last.Habit.Progress != actions.HabitGoal {
		t.Errorf("habit progress = %d, want capped at %d", last.Habit.Progress, actions.HabitGoal)
	}

	res, err := store.CompleteAction(ctx, u.ID, water, time.Time{})
	if err != nil {
		t.Fatalf("CompleteAction: %v", err)
	}
	if res.Habit.Progress != 1 {
		t.Errorf("new habit progress = %d, want 1", res.Habit.Progress)
	}

	user, err := store.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if user.Points != 26 {
		t.Errorf("user points = %d, want 26", user.Points)
	}
	if diff := user.TotalCO2Saved - 2.6; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("total saved = %v, want 2.6", user.TotalCO2Saved)
	}

	habits, err := store.Habits(ctx, u.ID)
	if err != nil {
		t.Fatalf("Habits: %v", err)
	}
	if len(habits) != 2 || habits[0].ActionID != "short_walk" || habits[1].ActionID != "tap_water" {
		t.Fatalf("habits = %+v", habits)
	}
	if habits[0].Quantity != "400g" {
		t.Errorf("quantity = %q", habits[0].Quantity)
	}
}

func TestCompleteActionUnknownUser(t *testing.T) {
	store := newTestStore(t)
	walk, _ := actions.Lookup("short_walk")

	_, err := store.CompleteAction(context.Background(), "missing", walk, time.Time{})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	counts, err := store.TableRowCounts(context.Background())
	if err != nil {
		t.Fatalf("TableRowCounts: %v", err)
	}
	if counts["actions"] != 0 {
		t.Errorf("actions = %d, want rollback to leave 0", counts["actions"])
	}
}

func TestRecentActionsNewestFirstAndLimited(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, WithClock(clock))
	ctx := context.Background()
	u := createTestUser(t, store, "ada@example.com")

	catalog := actions.Catalog()
	for i := 0; i < 12; i++ {
		if _, err := store.CompleteAction(ctx, u.ID, catalog[i%len(catalog)], time.Time{}); err != nil {
			t.Fatalf("CompleteAction: %v", err)
		}
		clock.Advance(time.Second)
	}

	recent, err := store.RecentActions(ctx, u.ID, 0)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(recent) != actions.RecentLimit {
		t.Fatalf("got %d actions, want %d", len(recent), actions.RecentLimit)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CompletedAt.After(recent[i-1].CompletedAt) {
			t.Fatalf("actions not newest first at %d", i)
		}
	}
	// 12th completion is catalog[11 % 4].
	if recent[0].ActionID != catalog[3].ID {
		t.Errorf("newest = %s, want %s", recent[0].ActionID, catalog[3].ID)
	}
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
