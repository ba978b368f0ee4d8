package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ojt-records-api/api/swagger"
	"github.com/noah-isme/ojt-records-api/internal/handler"
	"github.com/noah-isme/ojt-records-api/internal/middleware"
	"github.com/noah-isme/ojt-records-api/internal/models"
	"github.com/noah-isme/ojt-records-api/internal/repository"
	"github.com/noah-isme/ojt-records-api/internal/service"
	"github.com/noah-isme/ojt-records-api/pkg/cache"
	"github.com/noah-isme/ojt-records-api/pkg/config"
	"github.com/noah-isme/ojt-records-api/pkg/database"
	"github.com/noah-isme/ojt-records-api/pkg/export"
	"github.com/noah-isme/ojt-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ojt-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ojt-records-api/pkg/middleware/requestid"
	"github.com/noah-isme/ojt-records-api/pkg/security"
)

// @title OJT Records API
// @version 1.0.0
// @description Student on-the-job training records
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type handlers struct {
	auth     *handler.AuthHandler
	students *handler.StudentHandler
	metrics  *handler.MetricsHandler
}

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

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to prepare postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, profile cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	tokens, err := security.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		logr.Fatal("invalid jwt configuration", zap.Error(err))
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewStudentProfileRepository(db)
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metricsSvc, cfg.Cache.TTL, logr, redisClient != nil)

	profileSvc := service.NewProfileService(profileRepo, accountRepo, cacheSvc, validate, logr)
	authSvc := service.NewAuthService(accountRepo, profileSvc, security.NewBcryptHasher(cfg.Security.BcryptCost), tokens, validate, logr, metricsSvc, service.AuthConfig{
		TokenTTL:      cfg.JWT.Expiration,
		AdminEmail:    cfg.Admin.Email,
		AdminPassword: cfg.Admin.Password,
	})
	exportSvc := service.NewExportService(profileSvc, export.NewCSVExporter(), export.NewPDFExporter())

	if err := authSvc.EnsureAdmin(ctx); err != nil {
		logr.Fatal("failed to seed admin account", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics"))

	registerRoutes(r, cfg, authSvc, handlers{
		auth:     handler.NewAuthHandler(authSvc),
		students: handler.NewStudentHandler(profileSvc, exportSvc),
		metrics:  handler.NewMetricsHandler(metricsSvc, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func registerRoutes(r *gin.Engine, cfg *config.Config, tokens middleware.TokenValidator, h handlers) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.auth.Login)
	auth.POST("/register", h.auth.Register)
	auth.POST("/reset-password", h.auth.ResetPassword)
	auth.GET("/me", middleware.JWT(tokens), h.auth.Me)

	students := api.Group("/students", middleware.JWT(tokens), middleware.RequireRoles(models.RoleStudent))
	students.GET("/me", h.students.GetMine)
	students.PUT("/me", h.students.UpdateMine)

	admin := api.Group("/admin/students", middleware.JWT(tokens), middleware.RequireRoles(models.RoleAdmin))
	admin.GET("", h.students.List)
	admin.GET("/export", h.students.Export)
	admin.GET("/accounts/:accountId", h.students.Get)
	admin.PUT("/accounts/:accountId", h.students.Update)
	admin.DELETE("/:id", h.students.Delete)
}
