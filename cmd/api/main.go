package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alumni-talent-platform/config"
	_ "alumni-talent-platform/docs" // Important for Swagger
	v1 "alumni-talent-platform/internal/delivery/http/v1"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/internal/notification"
	"alumni-talent-platform/internal/repository/postgres"
	rediscache "alumni-talent-platform/internal/repository/redis"
	"alumni-talent-platform/internal/usecase"
	"alumni-talent-platform/pkg/auth"
	"alumni-talent-platform/pkg/database"
	"alumni-talent-platform/pkg/email"
	"alumni-talent-platform/pkg/logger"
	"alumni-talent-platform/pkg/metrics"
	"alumni-talent-platform/pkg/mq"
	pkgredis "alumni-talent-platform/pkg/redis"
	"alumni-talent-platform/pkg/security"
	"alumni-talent-platform/pkg/storage"
	"alumni-talent-platform/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Alumni Talent Platform API
// @version         1.0
// @description     Alumni and company registration review, company and job listings, resumes and applications.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Logger
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, FilePath: cfg.LogFile})
	logger.Log.Info("Starting alumni talent platform", "port", cfg.Port, "env", cfg.Environment)

	audit := security.NewSecurityLogger("alumni-talent-platform", cfg.Environment)
	defer func() { _ = audit.Sync() }()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Optional Redis
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkgredis.NewClient(ctx, pkgredis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var (
		regCache domain.RegistrationCache = rediscache.NopRegistrationCache{}
		quota    domain.UploadQuota
	)
	if redisClient != nil {
		regCache = rediscache.NewRegistrationCache(redisClient, time.Duration(cfg.RegistrationCacheTTLSeconds)*time.Second)
		quota = security.NewUploadLimiter(redisClient, cfg.UploadsPerDay)
	}

	// 5. Object storage
	store, err := storage.NewS3Store(ctx, storage.Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Log.Error("Failed to configure object storage", "error", err)
		os.Exit(1)
	}

	// 6. Decision notifications
	var publisher notification.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Log.Warn("RabbitMQ unavailable, decision events disabled", "error", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}
	var mailer notification.Mailer
	if emailService := email.NewEmailService(cfg); emailService.IsConfigured() {
		mailer = emailService
	} else {
		logger.Log.Warn("Email service not fully configured - decision emails disabled")
	}
	var notifier domain.DecisionNotifier
	if publisher != nil || mailer != nil {
		notifier = notification.NewDecisionNotifier(publisher, mailer)
	}

	// 7. Setup Repositories
	txManager := postgres.NewTxManager(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	registrationRepo := postgres.NewRegistrationRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	resumeRepo := postgres.NewResumeRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)

	// 8. Setup UseCases
	m := metrics.New("alumni")
	validate := validation.New()
	authUC := usecase.NewAuthUsecase(userRepo, cfg.SuperadminEmails, audit)
	registrationUC := usecase.NewRegistrationUsecase(usecase.RegistrationDeps{
		Tx:            txManager,
		Registrations: registrationRepo,
		Users:         userRepo,
		Companies:     companyRepo,
		Storage:       store,
		Cache:         regCache,
		Quota:         quota,
		Notifier:      notifier,
		Validate:      validate,
		Metrics:       m,
		Audit:         audit,
	})
	companyUC := usecase.NewCompanyUsecase(companyRepo, store, validate)
	jobUC := usecase.NewJobUsecase(jobRepo, companyRepo, validate)
	resumeUC := usecase.NewResumeUsecase(resumeRepo, store, quota, audit)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, resumeRepo, companyRepo, validate)

	checks := map[string]usecase.HealthCheck{
		"database": dbPool.Ping,
		"storage":  store.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return pkgredis.HealthCheck(ctx, redisClient) }
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 9. Setup Auth (Google ID tokens verified against Google's JWKS)
	provider := auth.NewGoogleProvider(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, auth.NewKeySet(auth.GoogleJWKSURL))
	sessions := auth.NewSessionManager(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		RegistrationUC: registrationUC,
		CompanyUC:      companyUC,
		JobUC:          jobUC,
		ResumeUC:       resumeUC,
		ApplicationUC:  applicationUC,
		HealthUC:       healthUC,
		Provider:       provider,
		Sessions:       sessions,
		Redis:          redisClient,
		Metrics:        m,
		Audit:          audit,
		Config:         cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
