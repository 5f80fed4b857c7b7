package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/auth"
	"github.com/tinytelemetry/ecotrack/internal/duckdb"
	"github.com/tinytelemetry/ecotrack/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// closeNotifyRecorder adds CloseNotify, which gin's streaming responses need.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

// browser replays cookies between requests like a real client.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newTestServer(t *testing.T, clock clockwork.Clock) (*Server, *browser) {
	t.Helper()
	store, err := duckdb.NewStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sessions, err := auth.NewSessions("test-secret", time.Hour, clock)
	require.NoError(t, err)

	srv := NewServer("", tracker.New(store), sessions, WithClock(clock))
	return srv, &browser{t: t, handler: srv.Handler(), cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := newRecorder()
	b.handler.ServeHTTP(rec, req)
	w := rec.ResponseRecorder
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) sendJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return b.do(req)
}

func signupForm(password, confirm string) url.Values {
	return url.Values{
		"email":            {"jane@example.org"},
		"password":         {password},
		"confirm_password": {confirm},
		"first_name":       {"Jane"},
		"last_name":        {"Doe"},
	}
}

func signIn(t *testing.T, b *browser) {
	t.Helper()
	w := b.postForm("/signup", signupForm("secret1", "secret1"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = b.postForm("/signin", url.Values{"email": {"jane@example.org"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
	require.Contains(t, b.cookies, auth.CookieName)
}

func TestHealthEndpoint(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())

	w := b.get("/api/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())

	w := b.do(httptest.NewRequest(http.MethodPost, "/api/health", nil))
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestSignupValidationAlerts(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing", url.Values{"email": {"jane@example.org"}}, "All fields are required"},
		{"mismatch", signupForm("secret1", "secret2"), "Passwords do not match"},
		{"short", signupForm("12345", "12345"), "Password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		w := b.postForm("/signup", tt.form)
		require.Equal(t, http.StatusSeeOther, w.Code, tt.name)
		assert.Equal(t, "/signup", w.Header().Get("Location"), tt.name)

		page := b.get("/signup")
		assert.Contains(t, page.Body.String(), tt.want, tt.name)
		assert.Contains(t, page.Body.String(), "alert alert-danger", tt.name)
	}

	bad := signupForm("secret1", "secret1")
	bad.Set("email", "jane-at-example")
	b.postForm("/signup", bad)
	assert.Contains(t, b.get("/signup").Body.String(), "Please enter a valid email address")

	b.postForm("/signup", signupForm("secret1", "secret1"))
	b.postForm("/signup", signupForm("secret1", "secret1"))
	assert.Contains(t, b.get("/signup").Body.String(), "Email already registered")
}

func TestSignupSigninFlow(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())

	w := b.postForm("/signup", signupForm("secret1", "secret1"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))

	page := b.get("/signin").Body.String()
	assert.Contains(t, page, "Registration successful! Please sign in.")
	assert.Contains(t, page, "alert alert-success")
	// Alerts are shown once.
	assert.NotContains(t, b.get("/signin").Body.String(), "Registration successful")

	w = b.postForm("/signin", url.Values{"email": {"jane@example.org"}, "password": {"nope123"}})
	assert.Equal(t, "/signin", w.Header().Get("Location"))
	assert.Contains(t, b.get("/signin").Body.String(), "Invalid email or password")

	w = b.postForm("/signin", url.Values{"email": {"jane@example.org"}, "password": {"secret1"}})
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	dash := b.get("/dashboard")
	require.Equal(t, http.StatusOK, dash.Code)
	assert.Contains(t, dash.Body.String(), "Welcome back, Jane!")
	assert.Contains(t, dash.Body.String(), "Welcome, Jane")

	w = b.get("/logout")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.NotContains(t, b.cookies, auth.CookieName)
	assert.Equal(t, "/signin", b.get("/dashboard").Header().Get("Location"))
}

func TestSigninRequiresBothFields(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())

	b.postForm("/signin", url.Values{"email": {"jane@example.org"}})
	assert.Contains(t, b.get("/signin").Body.String(), "Please enter both email and password")
}

func TestProtectedRoutes(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())

	for _, path := range []string{"/dashboard", "/overall", "/survey/home", "/actions", "/progress"} {
		w := b.get(path)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/signin", w.Header().Get("Location"), path)
	}
	w := b.get("/api/summary")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSurveySubmission(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())
	signIn(t, b)

	form := b.get("/survey/home")
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `name="home_size"`)
	assert.Contains(t, form.Body.String(), `<option value="medium" selected="">medium</option>`)

	assert.Equal(t, http.StatusNotFound, b.get("/survey/garden").Code)

	// small 2 + gas 2.5 + moderate 1.5
	w := b.postForm("/survey/home", url.Values{"home_size": {"small"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	dash := b.get("/dashboard").Body.String()
	assert.Contains(t, dash, "Home survey completed!")
	assert.Contains(t, dash, "6 t")

	w = b.get("/api/summary")
	require.Equal(t, http.StatusOK, w.Code)
	var sum struct {
		Total      float64 `json:"total"`
		Billboards int     `json:"billboards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.InDelta(t, 6.0, sum.Total, 1e-9)
	assert.Equal(t, 1, sum.Billboards)

	overall := b.get("/overall").Body.String()
	assert.Contains(t, overall, "1 billboards")
}

func TestCompleteActionAndAlerts(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())
	signIn(t, b)
	b.get("/dashboard") // consume the welcome alert

	w := b.sendJSON(http.MethodPost, "/api/actions/complete", `{"action_id":"short_walk"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `true`, mustField(t, w.Body.Bytes(), "success"))
	assert.JSONEq(t, `4`, mustField(t, w.Body.Bytes(), "points"))

	w = b.sendJSON(http.MethodPost, "/api/actions/complete", `{"action_id":"moon_walk"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = b.sendJSON(http.MethodPost, "/api/actions/complete", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.get("/api/alerts")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Alerts []struct {
			ID      string `json:"id"`
			Message string `json:"message"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "Walk for short distances completed! +4 points", body.Alerts[0].Message)

	path := "/api/alerts/" + body.Alerts[0].ID
	assert.Equal(t, http.StatusNoContent, b.do(httptest.NewRequest(http.MethodDelete, path, nil)).Code)
	assert.Equal(t, http.StatusNotFound, b.do(httptest.NewRequest(http.MethodDelete, path, nil)).Code)
}

func TestCompleteActionFormRedirects(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())
	signIn(t, b)

	req := httptest.NewRequest(http.MethodPost, "/api/actions/complete",
		strings.NewReader(url.Values{"action_id": {"clean_up"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	w := b.do(req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/progress", w.Header().Get("Location"))

	page := b.get("/progress").Body.String()
	assert.Contains(t, page, "Join a community clean-up")
	assert.Contains(t, page, "1 / 4")
	assert.Contains(t, page, "overflow-x: auto;")
}

func TestAlertsExpireAfterFiveSeconds(t *testing.T) {
	clock := clockwork.NewFakeClock()
	_, b := newTestServer(t, clock)
	signIn(t, b)

	w := b.get("/api/alerts")
	assert.Contains(t, w.Body.String(), "Welcome back, Jane!")

	clock.Advance(5001 * time.Millisecond)
	require.Eventually(t, func() bool {
		return !strings.Contains(b.get("/api/alerts").Body.String(), "Welcome back")
	}, time.Second, 5*time.Millisecond)
}

func TestPreferencesAPIAndTheme(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())
	signIn(t, b)

	assert.Equal(t, http.StatusNotFound, b.get("/api/preferences/theme").Code)

	w := b.sendJSON(http.MethodPut, "/api/preferences/theme", `"dark"`)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = b.sendJSON(http.MethodPut, "/api/preferences/theme", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.get("/api/preferences/theme")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"theme","value":"dark"}`, w.Body.String())

	page := b.get("/dashboard").Body.String()
	assert.Contains(t, page, `<html lang="en" data-theme="dark">`)
	assert.Contains(t, page, `data-bs-initialized="tooltip"`)

	req := httptest.NewRequest(http.MethodPost, "/preferences/theme",
		strings.NewReader(url.Values{"theme": {"light"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "/overall")
	w = b.do(req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/overall", w.Header().Get("Location"))
	assert.Contains(t, b.get("/overall").Body.String(), `data-theme="light"`)

	assert.Equal(t, http.StatusNoContent, b.do(httptest.NewRequest(http.MethodDelete, "/api/preferences/theme", nil)).Code)
	assert.Equal(t, http.StatusNotFound, b.get("/api/preferences/theme").Code)

	assert.Equal(t, http.StatusBadRequest, b.postForm("/preferences/theme", url.Values{"theme": {"neon"}}).Code)
}

func TestThemeRedirectStaysOnSite(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())
	signIn(t, b)

	cases := map[string]string{
		"":                                "/",
		"/overall":                        "/overall",
		"http://example.com/actions?x=1":  "/actions?x=1",
		"https://evil.test/phish":         "/",
		"//evil.test/phish":               "/",
		"javascript:alert(1)":             "/",
		"http://user@example.com/overall": "/",
		"overall":                         "/",
	}
	for referer, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/preferences/theme",
			strings.NewReader(url.Values{"theme": {"dark"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
		w := b.do(req)
		require.Equal(t, http.StatusSeeOther, w.Code, referer)
		assert.Equal(t, want, w.Header().Get("Location"), referer)
	}
}

func TestAPISigninAndBearer(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())
	b.postForm("/signup", signupForm("secret1", "secret1"))

	w := b.sendJSON(http.MethodPost, "/api/signin", `{"email":"jane@example.org","password":"wrong12"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = b.sendJSON(http.MethodPost, "/api/signin", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.sendJSON(http.MethodPost, "/api/signin", `{"email":"jane@example.org","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	w = httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"first_name":"Jane"`)
}

func TestPointsStream(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewRealClock())
	signIn(t, b)
	b.sendJSON(http.MethodPost, "/api/actions/complete", `{"action_id":"clean_up"}`)

	w := b.get("/api/points/stream?duration_ms=50")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "event:points")
	assert.Contains(t, body, "data:10\n")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "event:done\ndata:10"), body)

	assert.Equal(t, http.StatusBadRequest, b.get("/api/points/stream?duration_ms=-1").Code)
}

func TestIndexIsPublic(t *testing.T) {
	_, b := newTestServer(t, clockwork.NewFakeClock())

	w := b.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Know your carbon footprint")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func mustField(t *testing.T, data []byte, field string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	raw, ok := m[field]
	require.True(t, ok, "missing field %q", field)
	return string(raw)
}
