package middleware

import (
	"net/http"
	"strings"

	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/auth"
	"alumni-talent-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "session"
	sessionUserKey    = string(domain.KeySessionUser)
)

// SessionParser validates a session token.
type SessionParser interface {
	Parse(raw string) (*auth.SessionClaims, error)
}

// SessionMiddleware resolves the session cookie, or a Bearer token, to the
// current user. Role and status come from the database on every request, so
// approvals take effect without signing in again. Requests without a valid
// session continue anonymously.
func SessionMiddleware(sessions SessionParser, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := sessionToken(c)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := sessions.Parse(raw)
		if err != nil {
			c.Next()
			return
		}

		user, err := authUC.GetCurrentUser(c.Request.Context(), claims.Subject)
		if err != nil {
			if apperror.CodeOf(err) != http.StatusNotFound {
				logger.Log.Warn("session user lookup failed", "user_id", claims.Subject, "error", err)
			}
			c.Next()
			return
		}

		c.Set(sessionUserKey, user)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// RequireSession rejects anonymous API requests with 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the session user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(sessionUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
