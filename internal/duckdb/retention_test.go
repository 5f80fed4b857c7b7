package duckdb

import (
	"context"
	"testing"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"

	"github.com/jonboulle/clockwork"
)

func TestRetentionCleaner_StopIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	cleaner := NewRetentionCleaner(store, RetentionConfig{HistoryDays: 1})
	if cleaner == nil {
		t.Fatal("expected non-nil retention cleaner")
	}

	cleaner.Stop()
	cleaner.Stop()
}

func TestRetentionCleaner_Disabled(t *testing.T) {
	store := newTestStore(t)
	if c := NewRetentionCleaner(store, RetentionConfig{HistoryDays: -1}); c != nil {
		t.Fatal("expected nil cleaner when disabled")
	}
}

func TestRetentionCleaner_KeepsLatestPerCategory(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	store := newTestStore(t, WithClock(clock))
	ctx := context.Background()
	u := createTestUser(t, store, "ada@example.com")

	old := now.AddDate(0, 0, -10)
	for _, v := range []float64{9, 8} {
		if _, err := store.SaveSurvey(ctx, model.Survey{UserID: u.ID, Category: footprint.Home, CO2Emission: v, CreatedAt: old}); err != nil {
			t.Fatalf("SaveSurvey: %v", err)
		}
	}
	if _, err := store.SaveSurvey(ctx, model.Survey{UserID: u.ID, Category: footprint.Food, CO2Emission: 5, CreatedAt: old}); err != nil {
		t.Fatalf("SaveSurvey: %v", err)
	}

	cleaner := NewRetentionCleaner(store, RetentionConfig{HistoryDays: 7, Clock: clock})
	defer cleaner.Stop()

	counts, err := store.TableRowCounts(ctx)
	if err != nil {
		t.Fatalf("TableRowCounts: %v", err)
	}
	if counts["surveys"] != 2 {
		t.Errorf("surveys = %d, want 2", counts["surveys"])
	}

	got, err := store.CategoryEmissions(ctx, u.ID)
	if err != nil {
		t.Fatalf("CategoryEmissions: %v", err)
	}
	if got[footprint.Home] != 8 || got[footprint.Food] != 5 {
		t.Errorf("emissions changed by cleanup: %v", got)
	}
}
