package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/auth"
	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"
	"github.com/tinytelemetry/ecotrack/internal/notify"
	"github.com/tinytelemetry/ecotrack/internal/pageinit"
	"github.com/tinytelemetry/ecotrack/internal/tracker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Themes accepted by the theme switcher.
var Themes = []string{"light", "dark"}

func (s *Server) handleIndex(c *gin.Context) {
	s.render(c, http.StatusOK, "index", pageData{Title: "Track your carbon footprint"})
}

func (s *Server) handleSignupForm(c *gin.Context) {
	s.render(c, http.StatusOK, "signup", pageData{Title: "Sign up"})
}

const registrationFailed = "Registration failed. Please try again."

// signupMessage maps a registration failure to the alert shown to the user.
func signupMessage(err error) string {
	switch {
	case errors.Is(err, tracker.ErrMissingFields):
		return "All fields are required"
	case errors.Is(err, auth.ErrInvalidEmail):
		return "Please enter a valid email address"
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "Password must be at least 6 characters long"
	case errors.Is(err, model.ErrEmailTaken):
		return "Email already registered"
	default:
		return registrationFailed
	}
}

func (s *Server) handleSignup(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")
	first := c.PostForm("first_name")
	last := c.PostForm("last_name")

	fail := func(message string) {
		s.alert(c, notify.KindError, message)
		c.Redirect(http.StatusSeeOther, "/signup")
	}

	if email == "" || password == "" || strings.TrimSpace(first) == "" || strings.TrimSpace(last) == "" {
		fail(signupMessage(tracker.ErrMissingFields))
		return
	}
	if password != confirm {
		fail("Passwords do not match")
		return
	}

	if _, err := s.api.Register(c.Request.Context(), email, password, first, last); err != nil {
		msg := signupMessage(err)
		if msg == registrationFailed {
			s.log.Error("web: registration failed", zap.Error(err))
		}
		fail(msg)
		return
	}

	s.alert(c, notify.KindSuccess, "Registration successful! Please sign in.")
	c.Redirect(http.StatusSeeOther, "/signin")
}

func (s *Server) handleSigninForm(c *gin.Context) {
	s.render(c, http.StatusOK, "signin", pageData{Title: "Sign in"})
}

func (s *Server) handleSignin(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if email == "" || password == "" {
		s.alert(c, notify.KindError, "Please enter both email and password")
		c.Redirect(http.StatusSeeOther, "/signin")
		return
	}

	u, err := s.api.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		msg := "Invalid email or password"
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.log.Error("web: sign in failed", zap.Error(err))
			msg = "Login failed. Please try again."
		}
		s.alert(c, notify.KindError, msg)
		c.Redirect(http.StatusSeeOther, "/signin")
		return
	}

	token, err := s.sessions.Issue(u.ID, u.Email)
	if err != nil {
		s.log.Error("web: issue session failed", zap.Error(err))
		s.alert(c, notify.KindError, "Login failed. Please try again.")
		c.Redirect(http.StatusSeeOther, "/signin")
		return
	}
	s.sessions.SetCookie(c, token)
	if _, err := s.userEmitter(u.ID).Success(fmt.Sprintf("Welcome back, %s!", u.FirstName)); err != nil {
		s.log.Warn("web: alert dropped", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) handleLogout(c *gin.Context) {
	auth.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// handleTheme saves the chosen theme and returns to the referring page.
func (s *Server) handleTheme(c *gin.Context) {
	theme := c.PostForm("theme")
	valid := false
	for _, t := range Themes {
		if t == theme {
			valid = true
		}
	}
	if !valid {
		c.String(http.StatusBadRequest, "unknown theme")
		return
	}
	s.prefsFor(c).Set(pageinit.ThemeKey, theme)

	c.Redirect(http.StatusSeeOther, localReferer(c.Request))
}

// localReferer returns the referring path when it points back at this host,
// and "/" otherwise.
func localReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Opaque != "" || ref.User != nil {
		return "/"
	}
	if ref.Host != "" && !strings.EqualFold(ref.Host, r.Host) {
		return "/"
	}
	if ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return "/"
	}
	path := ref.EscapedPath()
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return "/"
	}
	if ref.RawQuery != "" {
		path += "?" + ref.RawQuery
	}
	return path
}

func (s *Server) summary(c *gin.Context) (model.Summary, bool) {
	id, _ := auth.UserID(c)
	sum, err := s.api.Summary(c.Request.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		// The account behind a valid token is gone.
		auth.ClearCookie(c)
		c.Redirect(http.StatusSeeOther, "/signin")
		return model.Summary{}, false
	}
	if err != nil {
		s.log.Error("web: load summary failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return model.Summary{}, false
	}
	return sum, true
}

func (s *Server) handleDashboard(c *gin.Context) {
	sum, ok := s.summary(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "dashboard", pageData{
		Title:     "Dashboard",
		FirstName: sum.FirstName,
		Summary:   sum,
	})
}

func (s *Server) handleOverall(c *gin.Context) {
	sum, ok := s.summary(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "overall", pageData{
		Title:     "Overall footprint",
		FirstName: sum.FirstName,
		Summary:   sum,
	})
}

func (s *Server) handleSurveyForm(c *gin.Context) {
	cat, err := footprint.ParseCategory(c.Param("category"))
	if err != nil {
		c.String(http.StatusNotFound, "unknown survey")
		return
	}
	s.render(c, http.StatusOK, "survey", pageData{
		Title:     cat.Title() + " survey",
		Category:  cat,
		Questions: footprint.Questions(cat),
	})
}

func (s *Server) handleSurvey(c *gin.Context) {
	cat, err := footprint.ParseCategory(c.Param("category"))
	if err != nil {
		c.String(http.StatusNotFound, "unknown survey")
		return
	}

	answers := footprint.Answers{}
	for _, q := range footprint.Questions(cat) {
		if v, ok := c.GetPostForm(q.Field); ok {
			answers[q.Field] = v
		}
	}

	id, _ := auth.UserID(c)
	if _, err := s.api.SubmitSurvey(c.Request.Context(), id, cat, answers); err != nil {
		s.log.Error("web: submit survey failed", zap.String("category", string(cat)), zap.Error(err))
		s.alert(c, notify.KindError, "Could not save your survey. Please try again.")
		c.Redirect(http.StatusSeeOther, "/survey/"+string(cat))
		return
	}
	s.alert(c, notify.KindSuccess, cat.Title()+" survey completed!")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) handleActions(c *gin.Context) {
	s.render(c, http.StatusOK, "actions", pageData{
		Title:   "Eco actions",
		Catalog: s.api.Catalog(),
	})
}

func (s *Server) handleProgress(c *gin.Context) {
	sum, ok := s.summary(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	recent, err := s.api.RecentActions(ctx, sum.UserID, 0)
	if err != nil {
		s.log.Error("web: load actions failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	habits, err := s.api.Habits(ctx, sum.UserID)
	if err != nil {
		s.log.Error("web: load habits failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	s.render(c, http.StatusOK, "progress", pageData{
		Title:     "Progress",
		FirstName: sum.FirstName,
		Summary:   sum,
		Recent:    recent,
		Habits:    habits,
		HabitGoal: actions.HabitGoal,
	})
}
