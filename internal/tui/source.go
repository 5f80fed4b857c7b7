package tui

import (
	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/model"
)

// Source is where the dashboard reads and records a user's data. The socket
// RPC client implements it.
type Source interface {
	Summary(email string) (model.Summary, error)
	RecentActions(email string, limit int) ([]model.CompletedAction, error)
	Habits(email string) ([]model.Habit, error)
	CompleteAction(email, actionID string) (model.ActionResult, error)
	Catalog() ([]actions.Action, error)
}

// dataMsg carries one full load of the dashboard.
type dataMsg struct {
	summary model.Summary
	habits  []model.Habit
	recent  []model.CompletedAction
	catalog []actions.Action
	err     error
}

// actionDoneMsg reports the outcome of completing an action.
type actionDoneMsg struct {
	title  string
	result model.ActionResult
	err    error
}

func load(src Source, email string, limit int) dataMsg {
	var msg dataMsg
	var err error
	if msg.summary, err = src.Summary(email); err != nil {
		return dataMsg{err: err}
	}
	if msg.habits, err = src.Habits(email); err != nil {
		return dataMsg{err: err}
	}
	if msg.recent, err = src.RecentActions(email, limit); err != nil {
		return dataMsg{err: err}
	}
	if msg.catalog, err = src.Catalog(); err != nil {
		return dataMsg{err: err}
	}
	return msg
}
