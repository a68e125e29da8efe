package v1

import (
	"net/http"
	"time"

	"alumni-talent-platform/config"
	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/internal/usecase"
	"alumni-talent-platform/pkg/metrics"
	"alumni-talent-platform/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	RegistrationUC domain.RegistrationUsecase
	CompanyUC      domain.CompanyUsecase
	JobUC          domain.JobUsecase
	ResumeUC       domain.ResumeUsecase
	ApplicationUC  domain.ApplicationUsecase
	HealthUC       usecase.HealthUsecase

	Provider IdentityProvider
	Sessions interface {
		SessionIssuer
		middleware.SessionParser
	}

	Redis   *goredis.Client // nil selects the in-process rate limiter
	Metrics *metrics.Metrics
	Audit   *security.SecurityLogger
	Config  *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	// Global Middlewares
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())
	r.Use(middleware.RequestMetrics(deps.Metrics))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.IsProduction()))
	r.Use(middleware.SecurityHeadersMiddleware(cfg.S3PublicBaseURL))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SessionMiddleware(deps.Sessions, deps.AuthUC))
	r.Use(middleware.CSRFMiddleware(cfg.CookieSecure))
	r.Use(middleware.RouteGuard(r, deps.Metrics, deps.Audit))

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	limiter := middleware.NewRateLimiter(deps.Redis, deps.Audit)
	authLimit := limiter.Middleware(middleware.AuthRateLimitConfig(cfg.RateLimitAuthThreshold, window))

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.Use(limiter.Middleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	protected := api.Group("")
	protected.Use(middleware.RequireSession())

	NewHealthHandler(api, deps.HealthUC)
	NewAuthHandler(api, deps.AuthUC, deps.Provider, deps.Sessions, deps.Audit, AuthHandlerConfig{
		FrontendURL:  cfg.FrontendURL,
		SecureCookie: cfg.CookieSecure,
	}, authLimit)
	NewRegistrationHandler(protected, deps.RegistrationUC, authLimit)
	NewAdminHandler(protected, deps.RegistrationUC, deps.AuthUC)
	NewCompanyHandler(api, protected, deps.CompanyUC)
	NewJobHandler(api, protected, deps.JobUC)
	NewResumeHandler(protected, deps.ResumeUC)
	NewApplicationHandler(protected, deps.ApplicationUC)

	NewPageHandler(r, PageDeps{
		RegistrationUC: deps.RegistrationUC,
		CompanyUC:      deps.CompanyUC,
		JobUC:          deps.JobUC,
		ResumeUC:       deps.ResumeUC,
		ApplicationUC:  deps.ApplicationUC,
	})

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
