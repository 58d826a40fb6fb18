package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bala2207022/face-attendance/api/swagger"
	"github.com/bala2207022/face-attendance/internal/embedding"
	"github.com/bala2207022/face-attendance/internal/handler"
	"github.com/bala2207022/face-attendance/internal/middleware"
	"github.com/bala2207022/face-attendance/internal/repository"
	"github.com/bala2207022/face-attendance/internal/service"
	"github.com/bala2207022/face-attendance/pkg/cache"
	"github.com/bala2207022/face-attendance/pkg/config"
	"github.com/bala2207022/face-attendance/pkg/export"
	"github.com/bala2207022/face-attendance/pkg/logger"
	corsmiddleware "github.com/bala2207022/face-attendance/pkg/middleware/cors"
	reqidmiddleware "github.com/bala2207022/face-attendance/pkg/middleware/requestid"
	"github.com/bala2207022/face-attendance/pkg/storage"
)

// @title Face Attendance API
// @version 1.0.0
// @description Identity matching and attendance ledger engine
// @BasePath /api/v1
// @schemes http

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

	frames, err := storage.NewFrameStore(cfg.Storage.DataDir)
	if err != nil {
		logr.Fatal("frame store init failed", zap.Error(err))
	}
	templates, err := repository.NewTemplateRepository(cfg.Storage.ModelsDir)
	if err != nil {
		logr.Fatal("template store init failed", zap.Error(err))
	}
	identities, err := repository.NewIdentityRepository(cfg.Storage.ModelsDir)
	if err != nil {
		logr.Fatal("identity store init failed", zap.Error(err))
	}
	classes, err := repository.NewClassRepository(cfg.Storage.ModelsDir, cfg.Storage.ReportsDir)
	if err != nil {
		logr.Fatal("class store init failed", zap.Error(err))
	}
	ledgers := repository.NewLedgerRepository()

	var cooldown repository.CooldownStore = repository.NewMemoryCooldownStore()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, using in-memory cooldown", zap.Error(err))
		} else {
			cooldown = repository.NewRedisCooldownStore(client)
			logr.Info("cooldown store backed by redis")
		}
	}

	var extractor embedding.Extractor
	if cfg.Extractor.URL != "" {
		extractor = embedding.NewRemoteExtractor(cfg.Extractor.URL, cfg.Extractor.Timeout)
	} else if cfg.Extractor.AllowFallback {
		extractor = embedding.NewHistogramExtractor()
		logr.Warn("no extractor url configured, using grayscale histogram fallback")
	} else {
		logr.Fatal("EXTRACTOR_URL is required unless EXTRACTOR_ALLOW_FALLBACK is set")
	}
	logr.Info("embedding extractor ready", zap.String("backend", extractor.Name()))

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	validate := validator.New()
	recognizer := service.NewRecognitionService(templates, extractor, cfg.Matching.Threshold, metrics, logr)
	enrollment := service.NewEnrollmentService(frames, templates, identities, classes, ledgers, extractor, validate, logr)
	classSvc := service.NewClassService(recognizer, identities, classes, ledgers, logr)
	attendance := service.NewAttendanceService(recognizer, identities, classes, ledgers, cooldown, cfg.Cooldown.Window, metrics, logr)
	summary := service.NewSummaryService(classes, ledgers, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	tokens := service.NewTokenService(cfg.Admin.TokenSecret, 12*time.Hour)

	enrollmentHandler := handler.NewEnrollmentHandler(enrollment)
	classHandler := handler.NewClassHandler(classSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendance, summary)
	summaryHandler := handler.NewSummaryHandler(summary)
	authHandler := handler.NewAuthHandler(tokens, cfg.Admin.TokenSecret)
	metricsHandler := handler.NewMetricsHandler(metrics, func() error {
		_, err := templates.All()
		return err
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/token", authHandler.Token)

	enrollmentGroup := api.Group("/enrollment")
	if cfg.Admin.Enabled {
		enrollmentGroup.Use(middleware.AdminJWT(tokens))
	}
	enrollmentGroup.POST("/frames", enrollmentHandler.SaveFrame)
	enrollmentGroup.POST("/professors", enrollmentHandler.RegisterProfessor)
	enrollmentGroup.POST("/students", enrollmentHandler.RegisterStudent)

	api.POST("/classes/open", classHandler.Open)
	api.POST("/classes/:id/checkins", attendanceHandler.CheckIn)
	api.GET("/classes/:id/summary", attendanceHandler.Summary)
	api.POST("/classes/:id/summary/rebuild", summaryHandler.Rebuild)
	api.GET("/classes/:id/summary/export", summaryHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
