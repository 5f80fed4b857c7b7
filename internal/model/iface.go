package model

import (
	"context"
	"errors"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/footprint"
)

var (
	// ErrNotFound is returned when a user or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an email already in use.
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u User) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
}

// SurveyStore persists survey results.
type SurveyStore interface {
	SaveSurvey(ctx context.Context, s Survey) (Survey, error)
	CategoryEmissions(ctx context.Context, userID string) (map[footprint.Category]float64, error)
}

// ActionStore persists completed actions and habits.
type ActionStore interface {
	CompleteAction(ctx context.Context, userID string, a actions.Action, at time.Time) (ActionResult, error)
	RecentActions(ctx context.Context, userID string, limit int) ([]CompletedAction, error)
	Habits(ctx context.Context, userID string) ([]Habit, error)
}

// Store is the full persistence contract.
type Store interface {
	UserStore
	SurveyStore
	ActionStore
	Ping(ctx context.Context) error
}

// TrackerAPI is the contract shared by the HTTP and socket RPC surfaces.
type TrackerAPI interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (User, error)
	Authenticate(ctx context.Context, email, password string) (User, error)
	User(ctx context.Context, id string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	Summary(ctx context.Context, userID string) (Summary, error)
	SubmitSurvey(ctx context.Context, userID string, c footprint.Category, answers footprint.Answers) (Survey, error)
	CompleteAction(ctx context.Context, userID, actionID string) (ActionResult, error)
	RecentActions(ctx context.Context, userID string, limit int) ([]CompletedAction, error)
	Habits(ctx context.Context, userID string) ([]Habit, error)
	Catalog() []actions.Action
}
