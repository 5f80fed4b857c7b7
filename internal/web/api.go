package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/animate"
	"github.com/tinytelemetry/ecotrack/internal/auth"
	"github.com/tinytelemetry/ecotrack/internal/model"
	"github.com/tinytelemetry/ecotrack/internal/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxPreferenceBytes bounds a stored preference value.
const maxPreferenceBytes = 16 * 1024

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.api.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": s.clock.Since(s.startTime).String(),
	})
}

func (s *Server) handleAPISignin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	u, err := s.api.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err != nil {
		s.log.Error("web: api sign in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
		return
	}

	token, err := s.sessions.Issue(u.ID, u.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(s.sessions.TTL().Seconds()),
		"user":       u,
	})
}

// apiError writes err with the status it maps to.
func (s *Server) apiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, actions.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Error("web: request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) handleSummary(c *gin.Context) {
	id, _ := auth.UserID(c)
	sum, err := s.api.Summary(c.Request.Context(), id)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) handleAlerts(c *gin.Context) {
	alerts := s.board.Alerts(s.boardKey(c))
	if alerts == nil {
		alerts = []notify.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (s *Server) handleDismissAlert(c *gin.Context) {
	if !s.board.Dismiss(s.boardKey(c), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleCompleteAction accepts a form field or JSON body naming the action.
// Browsers posting the form are sent back to the progress page.
func (s *Server) handleCompleteAction(c *gin.Context) {
	var req struct {
		ActionID string `json:"action_id" form:"action_id" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action_id is required"})
		return
	}

	id, _ := auth.UserID(c)
	res, err := s.api.CompleteAction(c.Request.Context(), id, req.ActionID)
	if err != nil {
		s.apiError(c, err)
		return
	}

	s.alert(c, notify.KindSuccess, fmt.Sprintf("%s completed! +%d points", res.Action.Title, res.Action.Points))

	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		c.Redirect(http.StatusSeeOther, "/progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"co2_saved": res.Action.CO2Saved,
		"points":    res.Points,
		"habit":     res.Habit,
	})
}

func (s *Server) handleGetPreference(c *gin.Context) {
	key := c.Param("key")
	raw, ok := s.prefsFor(c).GetRaw(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "preference not set"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": raw})
}

func (s *Server) handlePutPreference(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPreferenceBytes+1))
	if err != nil || len(body) > maxPreferenceBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preference value too large"})
		return
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preference value must be JSON"})
		return
	}
	s.prefsFor(c).Set(c.Param("key"), value)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeletePreference(c *gin.Context) {
	s.prefsFor(c).Remove(c.Param("key"))
	c.Status(http.StatusNoContent)
}

// handlePointsStream sends the counter animation for the user's points as
// server-sent events: one "points" event per frame, then "done".
func (s *Server) handlePointsStream(c *gin.Context) {
	id, _ := auth.UserID(c)
	sum, err := s.api.Summary(c.Request.Context(), id)
	if err != nil {
		s.apiError(c, err)
		return
	}

	duration := animate.DefaultDuration
	if raw := c.Query("duration_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration_ms must be a positive integer"})
			return
		}
		duration = time.Duration(ms) * time.Millisecond
	}

	ctx := c.Request.Context()
	frames := make(chan int64)
	anim := s.animator.Animate(ctx, animate.DisplayFunc(func(v int64) {
		select {
		case frames <- v:
		case <-ctx.Done():
		}
	}), float64(sum.Points), duration)

	c.Header("Cache-Control", "no-cache")
	c.Stream(func(io.Writer) bool {
		select {
		case v := <-frames:
			c.SSEvent("points", v)
			return true
		case <-anim.Done():
			c.SSEvent("done", sum.Points)
			return false
		case <-ctx.Done():
			return false
		}
	})
}
