// Package tracker implements model.TrackerAPI on top of a model.Store.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/auth"
	"github.com/tinytelemetry/ecotrack/internal/firebase"
	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// ErrMissingFields is returned when a required registration field is blank.
var ErrMissingFields = errors.New("please fill in all fields")

// Service is the application layer shared by the web and socket surfaces.
type Service struct {
	store  model.Store
	mirror firebase.Mirror
	clock  clockwork.Clock
	log    *zap.Logger
}

var _ model.TrackerAPI = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithMirror sets where survey results are mirrored.
func WithMirror(m firebase.Mirror) Option {
	return func(s *Service) {
		if m != nil {
			s.mirror = m
		}
	}
}

// WithClock sets the clock used to timestamp completed actions.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a service over store.
func New(store model.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		mirror: firebase.Noop{},
		clock:  clockwork.NewRealClock(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Register validates and creates an account.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (model.User, error) {
	email = strings.TrimSpace(email)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if email == "" || password == "" || firstName == "" || lastName == "" {
		return model.User{}, ErrMissingFields
	}
	if !auth.ValidateEmail(email) {
		return model.User{}, auth.ErrInvalidEmail
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	u, err := s.store.CreateUser(ctx, model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("tracker: user registered", zap.String("user_id", u.ID))
	return u, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords both yield auth.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (s *Service) User(ctx context.Context, id string) (model.User, error) {
	return s.store.UserByID(ctx, id)
}

func (s *Service) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.store.UserByEmail(ctx, email)
}

// Summary assembles the dashboard for userID.
func (s *Service) Summary(ctx context.Context, userID string) (model.Summary, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return model.Summary{}, err
	}
	values, err := s.store.CategoryEmissions(ctx, userID)
	if err != nil {
		return model.Summary{}, fmt.Errorf("category emissions: %w", err)
	}

	overall := footprint.NewOverall(values)
	return model.Summary{
		UserID:      u.ID,
		FirstName:   u.FirstName,
		Email:       u.Email,
		Emissions:   overall,
		Total:       overall.Total(),
		Billboards:  overall.Billboards(),
		Description: overall.Description(),
		Points:      u.Points,
		CO2Saved:    u.TotalCO2Saved,
	}, nil
}

// SubmitSurvey scores answers for c, stores the result and mirrors it.
// Mirror failures are logged only.
func (s *Service) SubmitSurvey(ctx context.Context, userID string, c footprint.Category, answers footprint.Answers) (model.Survey, error) {
	if _, err := s.store.UserByID(ctx, userID); err != nil {
		return model.Survey{}, err
	}
	value, err := footprint.Calculate(c, answers)
	if err != nil {
		return model.Survey{}, err
	}

	sv, err := s.store.SaveSurvey(ctx, model.Survey{
		UserID:      userID,
		Category:    c,
		CO2Emission: value,
		Answers:     answers,
	})
	if err != nil {
		return model.Survey{}, err
	}

	if err := s.mirror.MirrorSurvey(ctx, userID, c, answers, value); err != nil {
		s.log.Warn("tracker: survey mirror failed", zap.String("user_id", userID), zap.Error(err))
	}
	if values, err := s.store.CategoryEmissions(ctx, userID); err == nil {
		if err := s.mirror.MirrorTotal(ctx, userID, footprint.NewOverall(values).Total()); err != nil {
			s.log.Warn("tracker: total mirror failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return sv, nil
}

// CompleteAction records a catalog action for userID.
func (s *Service) CompleteAction(ctx context.Context, userID, actionID string) (model.ActionResult, error) {
	a, err := actions.Lookup(actionID)
	if err != nil {
		return model.ActionResult{}, err
	}
	res, err := s.store.CompleteAction(ctx, userID, a, s.clock.Now())
	if err != nil {
		return model.ActionResult{}, err
	}
	s.log.Debug("tracker: action completed",
		zap.String("user_id", userID), zap.String("action", a.ID), zap.Int64("points", res.Points))
	return res, nil
}

func (s *Service) RecentActions(ctx context.Context, userID string, limit int) ([]model.CompletedAction, error) {
	return s.store.RecentActions(ctx, userID, limit)
}

func (s *Service) Habits(ctx context.Context, userID string) ([]model.Habit, error) {
	return s.store.Habits(ctx, userID)
}

func (s *Service) Catalog() []actions.Action {
	return actions.Catalog()
}
