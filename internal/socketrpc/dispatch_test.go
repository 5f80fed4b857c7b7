package socketrpc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"
)

// stubTracker returns fixed values for dispatch unit testing.
type stubTracker struct{}

func (stubTracker) Register(context.Context, string, string, string, string) (model.User, error) {
	return model.User{}, nil
}
func (stubTracker) Authenticate(context.Context, string, string) (model.User, error) {
	return model.User{}, nil
}
func (stubTracker) User(context.Context, string) (model.User, error) { return model.User{ID: "u1"}, nil }
func (stubTracker) UserByEmail(_ context.Context, email string) (model.User, error) {
	if email != "jane@example.org" {
		return model.User{}, model.ErrNotFound
	}
	return model.User{ID: "u1", Email: email}, nil
}
func (stubTracker) Summary(_ context.Context, id string) (model.Summary, error) {
	return model.Summary{UserID: id, Points: 40, Total: 8}, nil
}
func (stubTracker) SubmitSurvey(_ context.Context, id string, c footprint.Category, _ footprint.Answers) (model.Survey, error) {
	return model.Survey{UserID: id, Category: c, CO2Emission: 8}, nil
}
func (stubTracker) CompleteAction(_ context.Context, id, actionID string) (model.ActionResult, error) {
	a, err := actions.Lookup(actionID)
	if err != nil {
		return model.ActionResult{}, err
	}
	return model.ActionResult{Action: model.CompletedAction{UserID: id, ActionID: a.ID}, Points: a.Points()}, nil
}
func (stubTracker) RecentActions(_ context.Context, id string, limit int) ([]model.CompletedAction, error) {
	return []model.CompletedAction{{UserID: id, ActionID: "tap_water", CompletedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}}, nil
}
func (stubTracker) Habits(_ context.Context, id string) ([]model.Habit, error) {
	return []model.Habit{{ActionID: "tap_water", Progress: 2}}, nil
}
func (stubTracker) Catalog() []actions.Action { return actions.Catalog() }

func newTestDispatcher() *Server {
	return NewServer("", stubTracker{}, nil)
}

func TestDispatch_AllMethods(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	tests := []struct {
		method string
		params string
	}{
		{"Summary", `{"Email":"jane@example.org"}`},
		{"RecentActions", `{"Email":"jane@example.org","Limit":5}`},
		{"Habits", `{"Email":"jane@example.org"}`},
		{"CompleteAction", `{"Email":"jane@example.org","ActionID":"short_walk"}`},
		{"SubmitSurvey", `{"Email":"jane@example.org","Category":"home","Answers":{}}`},
		{"Catalog", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			req := Request{
				JSONRPC: "2.0",
				ID:      1,
				Method:  tt.method,
				Params:  json.RawMessage(tt.params),
			}
			resp := srv.dispatch(req)
			if resp.Error != nil {
				t.Fatalf("dispatch(%s) error: %s", tt.method, resp.Error.Message)
			}
			if resp.Result == nil {
				t.Fatalf("dispatch(%s) returned nil result", tt.method)
			}
			if resp.JSONRPC != "2.0" {
				t.Errorf("JSONRPC = %q, want 2.0", resp.JSONRPC)
			}
			if resp.ID != 1 {
				t.Errorf("ID = %d, want 1", resp.ID)
			}
		})
	}
}

func TestDispatch_MethodNotFound(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	resp := srv.dispatch(Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "NonExistentMethod",
		Params:  json.RawMessage(`{}`),
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("error code = %d, want -32601", resp.Error.Code)
	}
}

func TestDispatch_InvalidParams(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	for _, tt := range []struct {
		method string
		params string
	}{
		{"Summary", `not json`},
		{"CompleteAction", `not json`},
		{"SubmitSurvey", `{"Email":"jane@example.org","Category":"garden"}`},
	} {
		resp := srv.dispatch(Request{
			JSONRPC: "2.0",
			ID:      2,
			Method:  tt.method,
			Params:  json.RawMessage(tt.params),
		})
		if resp.Error == nil {
			t.Fatalf("%s: expected error for malformed params", tt.method)
		}
		if resp.Error.Code != -32602 {
			t.Errorf("%s: error code = %d, want -32602 (invalid params)", tt.method, resp.Error.Code)
		}
	}
}

func TestDispatch_UnknownUser(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	resp := srv.dispatch(Request{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "Summary",
		Params:  json.RawMessage(`{"Email":"ghost@example.org"}`),
	})
	if resp.Error == nil || resp.Error.Code != -32001 {
		t.Fatalf("expected unknown-user error, got %+v", resp.Error)
	}
	if !UnknownUser(resp.Error) {
		t.Error("UnknownUser should recognise the error")
	}
}

func TestDispatch_ApplicationError(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	resp := srv.dispatch(Request{
		JSONRPC: "2.0",
		ID:      4,
		Method:  "CompleteAction",
		Params:  json.RawMessage(`{"Email":"jane@example.org","ActionID":"moon_walk"}`),
	})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected application error, got %+v", resp.Error)
	}
}

func TestDispatch_PreservesRequestID(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	for _, id := range []int{0, 1, 42, 9999} {
		resp := srv.dispatch(Request{
			JSONRPC: "2.0",
			ID:      id,
			Method:  "Catalog",
			Params:  json.RawMessage(`{}`),
		})
		if resp.ID != id {
			t.Errorf("request ID %d: response ID = %d", id, resp.ID)
		}
	}
}
