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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-lesson-grid-api/api/swagger"
	"github.com/noah-isme/sma-lesson-grid-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-lesson-grid-api/internal/middleware"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	"github.com/noah-isme/sma-lesson-grid-api/internal/repository"
	"github.com/noah-isme/sma-lesson-grid-api/internal/service"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/cache"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/config"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/database"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/export"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-lesson-grid-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-lesson-grid-api/pkg/middleware/requestid"
)

// @title SMA Lesson Grid API
// @version 1.0.0
// @description Generates, reviews and confirms the weekly lesson slot grid of an academic year.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func csvOptions(cfg config.ExportConfig) []export.CSVOption {
	var opts []export.CSVOption
	if runes := []rune(cfg.CSVDelimiter); len(runes) == 1 {
		opts = append(opts, export.WithComma(runes[0]))
	}
	if cfg.CSVBOM {
		opts = append(opts, export.WithBOM())
	}
	return opts
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"postgres": db}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, lesson slot cache disabled", "error", err)
	}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	academicYearRepo := repository.NewAcademicYearRepository(db)
	lessonSlotRepo := repository.NewLessonSlotRepository(db)
	gridConfigRepo := repository.NewLessonGridConfigRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.LessonGrid.SlotCacheTTL, logr, cfg.LessonGrid.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})
	academicYearSvc := service.NewAcademicYearService(academicYearRepo, lessonSlotRepo, validate, logr)
	lessonSlotSvc := service.NewLessonSlotService(lessonSlotRepo, academicYearRepo, cacheSvc, validate, logr, service.LessonSlotServiceConfig{
		CacheTTL:        cfg.LessonGrid.SlotCacheTTL,
		InstitutionName: cfg.Branding.InstitutionName,
		SiteURL:         cfg.Branding.SiteURL,
		CSVOptions:      csvOptions(cfg.Export),
	})
	lessonGridSvc := service.NewLessonGridService(academicYearRepo, lessonSlotRepo, gridConfigRepo, lessonSlotSvc, db, metricsSvc, logr, service.LessonGridServiceConfig{
		PreviewTTL:      cfg.LessonGrid.PreviewTTL,
		CleanupInterval: cfg.LessonGrid.CleanupInterval,
	})

	academicYearHandler := handler.NewAcademicYearHandler(academicYearSvc)
	lessonSlotHandler := handler.NewLessonSlotHandler(lessonSlotSvc)
	lessonGridHandler := handler.NewLessonGridHandler(lessonGridSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.DefaultConfig(cfg.CORS.AllowedOrigins)))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(authSvc))
	admin := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	years := api.Group("/academic-years")
	years.GET("", academicYearHandler.List)
	years.GET("/active", academicYearHandler.GetActive)
	years.GET("/:id", academicYearHandler.Get)
	years.POST("", admin, academicYearHandler.Create)
	years.PUT("/:id", admin, academicYearHandler.Update)
	years.POST("/:id/activate", admin, academicYearHandler.Activate)
	years.DELETE("/:id", admin, academicYearHandler.Delete)

	years.GET("/:id/lesson-slots", lessonSlotHandler.List)
	years.GET("/:id/lesson-slots/export", lessonSlotHandler.Export)
	years.POST("/:id/lesson-slots", admin, lessonSlotHandler.Create)
	api.DELETE("/lesson-slots/:id", admin, lessonSlotHandler.Delete)

	years.GET("/:id/lesson-grid/config", lessonGridHandler.Config)
	years.POST("/:id/lesson-grid/previews", admin, lessonGridHandler.Generate)

	previews := api.Group("/lesson-grid/previews")
	previews.GET("/:previewId", lessonGridHandler.GetPreview)
	previews.DELETE("/:previewId", admin, lessonGridHandler.Discard)
	previews.DELETE("/:previewId/slots/:weekday/:lessonNumber", admin, lessonGridHandler.RemoveSlot)
	previews.POST("/:previewId/confirm", admin, lessonGridHandler.Confirm)

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
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
