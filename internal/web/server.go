// Package web serves the tracker's pages and JSON API over HTTP.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/animate"
	"github.com/tinytelemetry/ecotrack/internal/auth"
	"github.com/tinytelemetry/ecotrack/internal/model"
	"github.com/tinytelemetry/ecotrack/internal/notify"
	"github.com/tinytelemetry/ecotrack/internal/pageinit"
	"github.com/tinytelemetry/ecotrack/internal/prefs"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultAddr is used when no listen address is configured.
const DefaultAddr = "0.0.0.0:3000"

// API is the application contract required by the HTTP surface.
type API interface {
	model.TrackerAPI
	Ping(ctx context.Context) error
}

// Server provides the web pages and JSON API.
type Server struct {
	addr      string
	api       API
	sessions  *auth.Sessions
	board     *notify.Board
	prefs     *prefs.Store
	animator  *animate.Animator
	pages     *pageinit.Sequencer
	clock     clockwork.Clock
	log       *zap.Logger
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithPrefs sets the preference store. Without one, preferences live in memory.
func WithPrefs(p *prefs.Store) Option {
	return func(s *Server) {
		if p != nil {
			s.prefs = p
		}
	}
}

// WithClock sets the clock used by alerts and animations.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new HTTP server.
func NewServer(addr string, api API, sessions *auth.Sessions, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:     addr,
		api:      api,
		sessions: sessions,
		clock:    clockwork.NewRealClock(),
		log:      zap.NewNop(),
		pages:    pageinit.New(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.prefs == nil {
		s.prefs = prefs.New(prefs.NewMemory(), s.log)
	}
	s.board = notify.NewBoard(notify.WithClock(s.clock), notify.WithLogger(s.log))
	s.animator = animate.New(s.clock)
	s.startTime = s.clock.Now()
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.sessions.Identify())

	r.GET("/", s.handleIndex)
	r.GET("/signup", s.handleSignupForm)
	r.POST("/signup", s.handleSignup)
	r.GET("/signin", s.handleSigninForm)
	r.POST("/signin", s.handleSignin)
	r.GET("/logout", s.handleLogout)
	r.POST("/preferences/theme", s.handleTheme)

	pages := r.Group("/", s.sessions.RequireUser("/signin"))
	pages.GET("/dashboard", s.handleDashboard)
	pages.GET("/overall", s.handleOverall)
	pages.GET("/survey/:category", s.handleSurveyForm)
	pages.POST("/survey/:category", s.handleSurvey)
	pages.GET("/actions", s.handleActions)
	pages.GET("/progress", s.handleProgress)

	r.GET("/api/health", s.handleHealth)
	r.POST("/api/signin", s.handleAPISignin)

	api := r.Group("/api", s.sessions.RequireUser("/signin"))
	api.GET("/summary", s.handleSummary)
	api.GET("/alerts", s.handleAlerts)
	api.DELETE("/alerts/:id", s.handleDismissAlert)
	api.POST("/actions/complete", s.handleCompleteAction)
	api.GET("/preferences/:key", s.handleGetPreference)
	api.PUT("/preferences/:key", s.handlePutPreference)
	api.DELETE("/preferences/:key", s.handleDeletePreference)
	api.GET("/points/stream", s.handlePointsStream)

	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.startTime = s.clock.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("web: serve failed", zap.Error(err))
		}
	}()
	s.log.Info("web: listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("web: request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
