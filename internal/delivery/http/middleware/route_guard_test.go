package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession stands in for SessionMiddleware: X-Test-Role and
// X-Test-Status describe the session user, no role means anonymous.
func fakeSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(sessionUserKey, &domain.User{
				ID:     "u-1",
				Role:   domain.Role(role),
				Status: domain.UserStatus(c.GetHeader("X-Test-Status")),
			})
		}
		c.Next()
	}
}

func newGuardedEngine(m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeSession())
	r.Use(RouteGuard(r, m, nil))

	page := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"page": name}) }
	}
	r.GET("/admin/registrations", page("admin"))
	r.GET("/profile", page("profile"))
	r.GET("/enterprise", page("enterprise"))
	r.GET("/jobs", page("jobs"))
	r.GET(NotFoundPath, func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"page": "not-found"})
	})
	return r
}

func TestRouteGuard(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		role   domain.Role
		status domain.UserStatus
		want   int
	}{
		{"anonymous admin", "/admin/registrations", "", "", http.StatusNotFound},
		{"anonymous profile", "/profile", "", "", http.StatusNotFound},
		{"anonymous public page", "/jobs", "", "", http.StatusOK},
		{"admin on admin", "/admin/registrations", domain.RoleAdmin, domain.UserStatusVerified, http.StatusOK},
		{"verified alumni on admin", "/admin/registrations", domain.RoleAlumni, domain.UserStatusVerified, http.StatusNotFound},
		{"superadmin everywhere", "/enterprise", domain.RoleSuperadmin, domain.UserStatusUnverified, http.StatusOK},
		{"verified alumni profile", "/profile", domain.RoleAlumni, domain.UserStatusVerified, http.StatusOK},
		{"pending alumni profile", "/profile", domain.RoleAlumni, domain.UserStatusPending, http.StatusNotFound},
		{"admin on profile", "/profile", domain.RoleAdmin, domain.UserStatusVerified, http.StatusNotFound},
		{"verified company enterprise", "/enterprise", domain.RoleCompany, domain.UserStatusVerified, http.StatusOK},
		{"unverified company enterprise", "/enterprise", domain.RoleCompany, domain.UserStatusUnverified, http.StatusNotFound},
		{"alumni on enterprise", "/enterprise", domain.RoleAlumni, domain.UserStatusVerified, http.StatusNotFound},
	}

	r := newGuardedEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("X-Test-Role", string(tt.role))
				req.Header.Set("X-Test-Status", string(tt.status))
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Empty(t, w.Header().Get("Location"))
			if tt.want == http.StatusNotFound {
				assert.JSONEq(t, `{"page":"not-found"}`, w.Body.String())
				assert.Equal(t, tt.path, req.URL.Path, "original URL is kept")
			}
		})
	}
}

func TestRouteGuard_CountsDenials(t *testing.T) {
	m := metrics.New("guard_test")
	r := newGuardedEngine(m)

	for _, path := range []string{"/admin/registrations", "/admin/registrations", "/profile"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessDenials.WithLabelValues("admin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDenials.WithLabelValues("profile")))
}

func TestRouteGuard_RewriteObservedOnce(t *testing.T) {
	m := metrics.New("guard_http_test")
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestMetrics(m))
	r.Use(fakeSession())
	r.Use(RouteGuard(r, m, nil))
	r.GET("/profile", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"page": "profile"}) })
	r.GET(NotFoundPath, func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"page": "not-found"}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	reg := prometheus.NewRegistry()
	reg.MustRegister(m.HTTPRequestDuration)
	families, err := reg.Gather()
	require.NoError(t, err)

	var samples uint64
	var routes []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			samples += metric.GetHistogram().GetSampleCount()
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" {
					routes = append(routes, label.GetValue())
				}
			}
		}
	}
	assert.Equal(t, uint64(1), samples)
	assert.Equal(t, []string{NotFoundPath}, routes)
}
