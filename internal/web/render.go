package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/auth"
	"github.com/tinytelemetry/ecotrack/internal/dom"
	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"
	"github.com/tinytelemetry/ecotrack/internal/notify"
	"github.com/tinytelemetry/ecotrack/internal/pageinit"
	"github.com/tinytelemetry/ecotrack/internal/prefs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "signup", "signin", "dashboard", "overall", "survey", "actions", "progress",
}

var templateFuncs = template.FuncMap{
	"co2":          footprint.FormatCO2,
	"tons":         footprint.FormatTons,
	"points":       footprint.FormatPoints,
	"barPercent":   barPercent,
	"habitPercent": habitPercent,
}

func barPercent(v float64) float64 {
	return footprint.BarFraction(v) * 100
}

func habitPercent(progress int) int {
	return progress * 100 / actions.HabitGoal
}

var views = parseViews()

func parseViews() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		out[name] = template.Must(template.New(name).Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// pageData is what every template receives. Pages use the fields they need.
type pageData struct {
	Title     string
	SignedIn  bool
	FirstName string
	Summary   model.Summary
	Category  footprint.Category
	Questions []footprint.Question
	Catalog   []actions.Action
	Recent    []model.CompletedAction
	Habits    []model.Habit
	HabitGoal int
}

const flashCookie = "ecotrack_flash"

// boardKey identifies whose alerts a request sees: the signed-in user, or
// an anonymous browser tracked by a cookie.
func (s *Server) boardKey(c *gin.Context) string {
	if id, ok := auth.UserID(c); ok {
		return "user:" + id
	}
	if v, err := c.Cookie(flashCookie); err == nil && v != "" {
		return "visitor:" + v
	}
	v := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, v, 0, "/", "", false, true)
	// Make the new id visible to later lookups within this request.
	c.Request.AddCookie(&http.Cookie{Name: flashCookie, Value: v})
	return "visitor:" + v
}

func (s *Server) emitter(c *gin.Context) *notify.Emitter {
	return s.board.Emitter(s.boardKey(c))
}

func (s *Server) userEmitter(userID string) *notify.Emitter {
	return s.board.Emitter("user:" + userID)
}

func (s *Server) alert(c *gin.Context, kind notify.Kind, message string) {
	if _, err := s.emitter(c).Notify(message, kind); err != nil {
		s.log.Warn("web: alert dropped", zap.Error(err))
	}
}

// prefsFor scopes preferences to the signed-in user or the anonymous browser.
func (s *Server) prefsFor(c *gin.Context) *prefs.Store {
	return s.prefs.Namespace(s.boardKey(c))
}

// render executes a page template, moves pending alerts into the page's
// container and applies the static page registrations before writing HTML.
func (s *Server) render(c *gin.Context, status int, name string, data pageData) {
	_, data.SignedIn = auth.UserID(c)

	var buf bytes.Buffer
	if err := views[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error("web: template failed", zap.String("page", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	doc, err := dom.Parse(&buf)
	if err != nil {
		s.log.Error("web: parse page failed", zap.String("page", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	key := s.boardKey(c)
	if container, ok := doc.FindContainer(); ok {
		pending := s.board.Alerts(key)
		// Prepend oldest first so the newest ends up on top.
		for i := len(pending) - 1; i >= 0; i-- {
			container.Prepend(pending[i])
			s.board.Dismiss(key, pending[i].ID)
		}
	}

	s.pages.Prepare(pageinit.Page{
		Doc:   doc,
		Clock: s.clock,
		Prefs: s.prefsFor(c),
		Log:   s.log,
	})

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := doc.Render(c.Writer); err != nil {
		s.log.Warn("web: write page failed", zap.String("page", name), zap.Error(err))
	}
}
