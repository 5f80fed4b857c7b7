package socketrpc_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/duckdb"
	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/socketrpc"
	"github.com/tinytelemetry/ecotrack/internal/tracker"
)

func startTestServer(t *testing.T) (string, *socketrpc.Server) {
	t.Helper()
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := tracker.New(store)
	if _, err := svc.Register(context.Background(), "jane@example.org", "secret1", "Jane", "Doe"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sockPath := filepath.Join(t.TempDir(), "test.sock")
	srv := socketrpc.NewServer(sockPath, svc, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	return sockPath, srv
}

func TestRoundtrip(t *testing.T) {
	sockPath, srv := startTestServer(t)
	defer srv.Stop()

	client, err := socketrpc.Dial(sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	const email = "jane@example.org"

	t.Run("Catalog", func(t *testing.T) {
		catalog, err := client.Catalog()
		if err != nil {
			t.Fatal(err)
		}
		if len(catalog) != 4 || catalog[0].ID != "short_walk" {
			t.Fatalf("unexpected catalog: %v", catalog)
		}
	})

	t.Run("CompleteAction", func(t *testing.T) {
		res, err := client.CompleteAction(email, "clean_up")
		if err != nil {
			t.Fatal(err)
		}
		if res.Points != 10 || res.Habit.Progress != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("SubmitSurvey", func(t *testing.T) {
		sv, err := client.SubmitSurvey(email, footprint.Food, nil)
		if err != nil {
			t.Fatal(err)
		}
		if sv.CO2Emission != 5.5 {
			t.Fatalf("got %v, want 5.5", sv.CO2Emission)
		}
	})

	t.Run("Summary", func(t *testing.T) {
		sum, err := client.Summary(email)
		if err != nil {
			t.Fatal(err)
		}
		if sum.Points != 10 || sum.Emissions.Food != 5.5 {
			t.Fatalf("unexpected summary: %+v", sum)
		}
	})

	t.Run("RecentActions", func(t *testing.T) {
		recent, err := client.RecentActions(email, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(recent) != 1 || recent[0].ActionID != "clean_up" {
			t.Fatalf("unexpected actions: %v", recent)
		}
	})

	t.Run("Habits", func(t *testing.T) {
		habits, err := client.Habits(email)
		if err != nil {
			t.Fatal(err)
		}
		if len(habits) != 1 {
			t.Fatalf("unexpected habits: %v", habits)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := client.Summary("ghost@example.org")
		if !socketrpc.UnknownUser(err) {
			t.Fatalf("expected unknown-user error, got %v", err)
		}
	})
}

func TestDialFailure(t *testing.T) {
	_, err := socketrpc.Dial(filepath.Join(t.TempDir(), "nonexistent.sock"))
	if err == nil {
		t.Fatal("expected error dialing nonexistent socket")
	}
}

func TestServerStopCleansSocket(t *testing.T) {
	sockPath, srv := startTestServer(t)
	srv.Stop()

	if _, err := socketrpc.Dial(sockPath); err == nil {
		t.Fatal("expected dial to fail after server stop")
	}
}

func TestSecondServerRefused(t *testing.T) {
	sockPath, srv := startTestServer(t)
	defer srv.Stop()

	other := socketrpc.NewServer(sockPath, nil, nil)
	if err := other.Start(); err == nil {
		other.Stop()
		t.Fatal("expected second server on the same socket to fail")
	}
}

func TestStopIdempotent(t *testing.T) {
	_, srv := startTestServer(t)
	srv.Stop()
	srv.Stop()
}

func TestStopClosesConns(t *testing.T) {
	sockPath, srv := startTestServer(t)
	client, err := socketrpc.Dial(sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if _, err := client.Catalog(); err != nil {
		t.Fatalf("Catalog before stop: %v", err)
	}
	srv.Stop()

	done := make(chan error, 1)
	go func() {
		_, callErr := client.Catalog()
		done <- callErr
	}()

	select {
	case callErr := <-done:
		if callErr == nil {
			t.Fatal("expected client call to fail after server stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client call hung after server stop")
	}
}
