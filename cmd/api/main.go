package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/svshs-enrollment-api/internal/handler"
	"github.com/noah-isme/svshs-enrollment-api/internal/middleware"
	"github.com/noah-isme/svshs-enrollment-api/internal/repository"
	"github.com/noah-isme/svshs-enrollment-api/internal/service"
	"github.com/noah-isme/svshs-enrollment-api/pkg/cache"
	"github.com/noah-isme/svshs-enrollment-api/pkg/config"
	"github.com/noah-isme/svshs-enrollment-api/pkg/database"
	"github.com/noah-isme/svshs-enrollment-api/pkg/logger"
	"github.com/noah-isme/svshs-enrollment-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/svshs-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/svshs-enrollment-api/pkg/middleware/requestid"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
	"github.com/noah-isme/svshs-enrollment-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, settings cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient)
	}

	blobStore, err := storage.New(cfg.Storage, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}

	mailer, err := mail.New(cfg.Mail, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init mailer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	enrollmentStore := repository.NewEnrollmentStore(db)
	studentRepo := repository.NewStudentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	notifications := service.NewNotificationService(mailer, service.NotificationConfig{
		Workers:      cfg.Notifications.Workers,
		MaxRetries:   cfg.Notifications.MaxRetries,
		RetryDelay:   cfg.Notifications.RetryDelay,
		SendTimeout:  cfg.Notifications.SendTimeout,
		SchoolName:   cfg.School.Name,
		ContactEmail: cfg.School.ContactEmail,
	}, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	documents := service.NewDocumentService(blobStore, cfg.Uploads.MaxFileSizeBytes, cfg.Uploads.UploadTimeout, logr)
	registrations := service.NewRegistrationService(enrollmentStore, documents, notifications, validate, logr, cfg.School.ReferencePrefix, nil)

	var settings *service.SettingsService
	if cacheRepo != nil {
		settings = service.NewSettingsService(settingsRepo, cacheRepo, cfg.Settings.CacheTTL, logr, nil)
	} else {
		settings = service.NewSettingsService(settingsRepo, nil, cfg.Settings.CacheTTL, logr, nil)
	}

	auth := service.NewAuthService(studentRepo, cfg.JWT.Secret, cfg.JWT.Expiration, validate, logr)
	exports := service.NewExportService(studentRepo, cfg.School.Name, logr)
	metrics := service.NewMetricsService()

	resp := response.NewWriter(cfg.Env != config.EnvProduction)

	enrollmentHandler := handler.NewEnrollmentHandler(registrations, settings, metrics, resp)
	settingsHandler := handler.NewSettingsHandler(settings, resp)
	authHandler := handler.NewAuthHandler(auth, resp)
	exportHandler := handler.NewExportHandler(exports, resp)
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if local, ok := blobStore.(*storage.LocalStorage); ok {
		r.Static(cfg.Storage.LocalPublicURL, local.Dir())
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/enroll", enrollmentHandler.Enroll)
		api.GET("/enrollment-status", settingsHandler.Status)
		api.POST("/auth/login", authHandler.Login)

		student := api.Group("")
		student.Use(middleware.StudentJWT(auth, resp))
		student.GET("/enrollments/me", authHandler.MyEnrollments)

		admin := api.Group("")
		admin.Use(middleware.AdminToken(cfg.Admin.Token, resp))
		admin.POST("/toggle-enrollment", settingsHandler.Toggle)
		admin.POST("/update-auto-schedule", settingsHandler.UpdateAutoSchedule)
		admin.GET("/admin/enrollments/export", exportHandler.Export)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
