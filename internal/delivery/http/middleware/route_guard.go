package middleware

import (
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/metrics"
	"alumni-talent-platform/pkg/security"

	"github.com/gin-gonic/gin"
)

// NotFoundPath is where denied page requests are rewritten to.
const NotFoundPath = "/not-found"

// rewrittenKey marks the outer frame of a request that was re-dispatched
// to NotFoundPath. The inner dispatch has already been observed.
const rewrittenKey = "route_guard_rewritten"

// RouteGuard enforces page access for /admin, /profile and /enterprise.
// A denied request is re-dispatched to NotFoundPath inside the same
// response, so the client sees a 404 at the original URL and learns
// nothing about the page. Must run after SessionMiddleware.
//
// HandleContext resets the context and runs the global chain again for
// NotFoundPath, so the session is reloaded and the guard passes it through.
// The outer frame is flagged afterwards so RequestMetrics records the
// request once.
func RouteGuard(engine *gin.Engine, m *metrics.Metrics, audit *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		class := domain.ClassifyRoute(path)
		if class == domain.RouteOther {
			c.Next()
			return
		}

		var (
			role   domain.Role
			status domain.UserStatus
			userID string
		)
		if user := CurrentUser(c); user != nil {
			role, status, userID = user.Role, user.Status, user.ID
		}

		if domain.Decide(class, role, status) == domain.Allow {
			c.Next()
			return
		}

		m.AccessDenied(class.String())
		audit.LogAccessDenied(c.Request.Context(), userID, c.ClientIP(), c.GetString(requestIDKey), path, class.String())

		c.Request.URL.Path = NotFoundPath
		engine.HandleContext(c)
		c.Request.URL.Path = path
		c.Set(rewrittenKey, true)
		c.Abort()
	}
}
