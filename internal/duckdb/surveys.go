package duckdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaveSurvey records a survey result.
func (s *Store) SaveSurvey(ctx context.Context, sv model.Survey) (model.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	sv.ID = uuid.NewString()
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = s.now()
	}

	var answers any
	if len(sv.Answers) > 0 {
		data, err := json.Marshal(sv.Answers)
		if err != nil {
			return model.Survey{}, fmt.Errorf("encode answers: %w", err)
		}
		answers = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO surveys (id, user_id, category, co2_emission, answers, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.UserID, string(sv.Category), sv.CO2Emission, answers, sv.CreatedAt)
	if err != nil {
		return model.Survey{}, fmt.Errorf("insert survey: %w", err)
	}
	return sv, nil
}

// CategoryEmissions returns the most recent result per category for a user.
// Categories never surveyed are absent from the map.
func (s *Store) CategoryEmissions(ctx context.Context, userID string) (map[footprint.Category]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, arg_max(co2_emission, seq)
		FROM surveys
		WHERE user_id = ?
		GROUP BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("query emissions: %w", err)
	}
	defer rows.Close()

	out := make(map[footprint.Category]float64)
	for rows.Next() {
		var (
			category string
			value    float64
		)
		if err := rows.Scan(&category, &value); err != nil {
			s.log.Warn("duckdb: scan error (CategoryEmissions)", zap.Error(err))
			continue
		}
		out[footprint.Category(category)] = value
	}
	return out, rows.Err()
}

// DeleteSupersededSurveys removes surveys older than cutoff that are not the
// latest of their user and category. It returns the number of rows deleted.
func (s *Store) DeleteSupersededSurveys(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM surveys
		WHERE created_at < ?
		  AND seq NOT IN (
			SELECT max(seq) FROM surveys GROUP BY user_id, category
		  )`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete surveys: %w", err)
	}
	return res.RowsAffected()
}
