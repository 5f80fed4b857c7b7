package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompleteAction records a completed action for userID in one transaction:
// the action row is inserted, the user's totals are bumped and the habit
// card for the action is advanced.
func (s *Store) CompleteAction(ctx context.Context, userID string, a actions.Action, at time.Time) (model.ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ActionResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		points   int64
		co2Saved float64
	)
	err = tx.QueryRowContext(ctx, `SELECT points, total_co2_saved FROM users WHERE id = ?`, userID).Scan(&points, &co2Saved)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ActionResult{}, model.ErrNotFound
	}
	if err != nil {
		return model.ActionResult{}, fmt.Errorf("load user: %w", err)
	}

	done := model.CompletedAction{
		ID:          uuid.NewString(),
		UserID:      userID,
		ActionID:    a.ID,
		Title:       a.Title,
		CO2Saved:    a.CO2Kg,
		Points:      a.Points(),
		CompletedAt: at,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO actions (id, user_id, action_id, title, co2_saved, points, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		done.ID, done.UserID, done.ActionID, done.Title, done.CO2Saved, done.Points, done.CompletedAt); err != nil {
		return model.ActionResult{}, fmt.Errorf("insert action: %w", err)
	}

	points += done.Points
	co2Saved += done.CO2Saved
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET points = ?, total_co2_saved = ? WHERE id = ?`, points, co2Saved, userID); err != nil {
		return model.ActionResult{}, fmt.Errorf("update totals: %w", err)
	}

	habit, err := advanceHabit(ctx, tx, userID, a, at)
	if err != nil {
		return model.ActionResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ActionResult{}, fmt.Errorf("commit: %w", err)
	}

	return model.ActionResult{
		Action:   done,
		Points:   points,
		CO2Saved: co2Saved,
		Habit:    habit,
	}, nil
}

func advanceHabit(ctx context.Context, tx *sql.Tx, userID string, a actions.Action, at time.Time) (model.Habit, error) {
	var current int
	err := tx.QueryRowContext(ctx,
		`SELECT progress FROM habits WHERE user_id = ? AND action_id = ?`, userID, a.ID).Scan(&current)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.Habit{}, fmt.Errorf("load habit: %w", err)
	}

	h := model.Habit{
		ActionID:  a.ID,
		Title:     a.Title,
		Quantity:  a.Quantity(),
		Points:    a.Points(),
		Progress:  actions.NextHabitProgress(current),
		UpdatedAt: at,
	}

	if exists {
		_, err = tx.ExecContext(ctx,
			`UPDATE habits SET progress = ?, updated_at = ? WHERE user_id = ? AND action_id = ?`,
			h.Progress, h.UpdatedAt, userID, a.ID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO habits (user_id, action_id, title, quantity, points, progress, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, h.ActionID, h.Title, h.Quantity, h.Points, h.Progress, h.UpdatedAt)
	}
	if err != nil {
		return model.Habit{}, fmt.Errorf("save habit: %w", err)
	}
	return h, nil
}

// RecentActions returns a user's latest completed actions, newest first.
func (s *Store) RecentActions(ctx context.Context, userID string, limit int) ([]model.CompletedAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if limit <= 0 {
		limit = actions.RecentLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action_id, title, co2_saved, points, completed_at
		FROM actions
		WHERE user_id = ?
		ORDER BY completed_at DESC, seq DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []model.CompletedAction
	for rows.Next() {
		var a model.CompletedAction
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActionID, &a.Title, &a.CO2Saved, &a.Points, &a.CompletedAt); err != nil {
			s.log.Warn("duckdb: scan error (RecentActions)", zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Habits returns a user's habit cards in the order they were started.
func (s *Store) Habits(ctx context.Context, userID string) ([]model.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT h.action_id, h.title, h.quantity, h.points, h.progress, h.updated_at
		FROM habits h
		LEFT JOIN (
			SELECT action_id, min(seq) AS first_seq FROM actions WHERE user_id = ? GROUP BY action_id
		) f ON f.action_id = h.action_id
		WHERE h.user_id = ?
		ORDER BY f.first_seq NULLS LAST, h.action_id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}
	defer rows.Close()

	var out []model.Habit
	for rows.Next() {
		var h model.Habit
		if err := rows.Scan(&h.ActionID, &h.Title, &h.Quantity, &h.Points, &h.Progress, &h.UpdatedAt); err != nil {
			s.log.Warn("duckdb: scan error (Habits)", zap.Error(err))
			continue
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
