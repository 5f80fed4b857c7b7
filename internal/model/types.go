package model

import (
	"time"

	"github.com/tinytelemetry/ecotrack/internal/footprint"
)

// User is a registered account.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	CreatedAt     time.Time `json:"created_at"`
	TotalCO2Saved float64   `json:"total_co2_saved"`
	Points        int64     `json:"points"`
}

// Survey is one submitted category survey.
type Survey struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Category    footprint.Category `json:"category"`
	CO2Emission float64            `json:"co2_emission"`
	Answers     footprint.Answers  `json:"answers,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CompletedAction records one completed eco action.
type CompletedAction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ActionID    string    `json:"action_id"`
	Title       string    `json:"title"`
	CO2Saved    float64   `json:"co2_saved"`
	Points      int64     `json:"points"`
	CompletedAt time.Time `json:"completed_at"`
}

// Habit is the progress card for one action.
type Habit struct {
	ActionID  string    `json:"action_id"`
	Title     string    `json:"title"`
	Quantity  string    `json:"quantity"`
	Points    int64     `json:"points"`
	Progress  int       `json:"progress"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is a user's dashboard.
type Summary struct {
	UserID      string            `json:"user_id"`
	FirstName   string            `json:"first_name"`
	Email       string            `json:"email"`
	Emissions   footprint.Overall `json:"emissions"`
	Total       float64           `json:"total"`
	Billboards  int               `json:"billboards"`
	Description string            `json:"description"`
	Points      int64             `json:"points"`
	CO2Saved    float64           `json:"co2_saved"`
}

// ActionResult is returned after completing an action.
type ActionResult struct {
	Action   CompletedAction `json:"action"`
	Points   int64           `json:"points"`
	CO2Saved float64         `json:"co2_saved"`
	Habit    Habit           `json:"habit"`
}
