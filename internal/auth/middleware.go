package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "auth.user_id"
	emailKey  = "auth.email"
)

// TokenFromRequest returns the bearer token or, failing that, the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// SetCookie stores token in the session cookie.
func (s *Sessions) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(s.ttl.Seconds()), "/", "", false, true)
}

// ClearCookie expires the session cookie.
func ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// Identify attaches the session's user to the context when a valid token is
// present. It never aborts.
func (s *Sessions) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := s.Verify(TokenFromRequest(c.Request)); err == nil {
			c.Set(userIDKey, claims.Subject)
			c.Set(emailKey, claims.Email)
		}
		c.Next()
	}
}

// RequireUser aborts unauthenticated requests. API paths get 401 JSON; pages
// are redirected to loginPath.
func (s *Sessions) RequireUser(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.Verify(TokenFromRequest(c.Request))
		if err != nil {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Set(userIDKey, claims.Subject)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

// Email returns the authenticated user's email, if any.
func Email(c *gin.Context) string {
	return c.GetString(emailKey)
}
