package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{" jane@example.org ", true},
		{"jane@example", false},
		{"jane example@x.com", false},
		{"@x.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateEmail(tt.email), tt.email)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, CheckPassword(hash, "secret1"))
	assert.ErrorIs(t, CheckPassword(hash, "secret2"), ErrInvalidCredentials)
}

func TestSessionsIssueVerify(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s, err := NewSessions("k", time.Hour, clock)
	require.NoError(t, err)

	token, err := s.Issue("u1", "jane@example.org")
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "jane@example.org", claims.Email)

	clock.Advance(2 * time.Hour)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionsRejectForeignSecret(t *testing.T) {
	t.Parallel()

	a, err := NewSessions("alpha", time.Hour, nil)
	require.NoError(t, err)
	b, err := NewSessions("beta", time.Hour, nil)
	require.NoError(t, err)

	token, err := a.Issue("u1", "x@y.z")
	require.NoError(t, err)
	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = a.Verify("")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestNewSessionsValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSessions(" ", time.Hour, nil)
	assert.Error(t, err)
	_, err = NewSessions("k", 0, nil)
	assert.Error(t, err)
}

func newRouter(t *testing.T, s *Sessions) *gin.Engine {
	t.Helper()
	r := gin.New()
	guarded := r.Group("/", s.RequireUser("/signin"))
	guarded.GET("/dashboard", func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, id+" "+Email(c))
	})
	guarded.GET("/api/summary", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	s, err := NewSessions("k", time.Hour, nil)
	require.NoError(t, err)
	r := newRouter(t, s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())

	token, err := s.Issue("u1", "a@b.co")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1 a@b.co", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetAndClearCookie(t *testing.T) {
	t.Parallel()

	s, err := NewSessions("k", time.Hour, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	s.SetCookie(c, "tok")
	assert.Contains(t, w.Header().Get("Set-Cookie"), CookieName+"=tok")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ClearCookie(c)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
