package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/theplanbeta/plan-beta-dashboard-sub002/api/swagger"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/handler"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/middleware"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/repository"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/internal/service"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/cache"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/config"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/database"
	"github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/logger"
	corsmiddleware "github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/middleware/cors"
	reqidmiddleware "github.com/theplanbeta/plan-beta-dashboard-sub002/pkg/middleware/requestid"
)

// @title Plan Beta Scheduling API
// @version 0.1.0
// @description Batch calendar layout, teacher availability and placement suggestions
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Layout.CacheTTL, logr, true)
		}
	}

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	batchRepo := repository.NewBatchRepository(db)

	teacherSvc := service.NewTeacherService(teacherRepo, cacheSvc, validate, logr)
	batchSvc := service.NewBatchService(batchRepo, teacherRepo, cacheSvc, validate, logr)
	schedulingSvc := service.NewSchedulingService(teacherRepo, batchRepo, cacheSvc, metricsSvc, service.SchedulingOptions{
		MonthsBefore:         cfg.Window.MonthsBefore,
		MonthsAfter:          cfg.Window.MonthsAfter,
		LayoutCacheTTL:       cfg.Layout.CacheTTL,
		CandidateLevels:      cfg.Suggestions.CandidateLevels,
		DefaultMaxConcurrent: cfg.Suggestions.DefaultMaxConcurrent,
	}, logr)

	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	batchHandler := handler.NewBatchHandler(batchSvc)
	schedulingHandler := handler.NewSchedulingHandler(schedulingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/calendar/window", schedulingHandler.Window)
		api.GET("/calendar/layout", schedulingHandler.Layout)
		api.GET("/calendar/layout/monthly", schedulingHandler.MonthlyLayout)
		api.GET("/calendar/layout/export", schedulingHandler.ExportLayout)

		api.GET("/teachers", teacherHandler.List)
		api.POST("/teachers", teacherHandler.Create)
		api.GET("/teachers/availability", schedulingHandler.RosterAvailability)
		api.GET("/teachers/:id", teacherHandler.Get)
		api.PUT("/teachers/:id", teacherHandler.Update)
		api.DELETE("/teachers/:id", teacherHandler.Deactivate)
		api.GET("/teachers/:id/availability", schedulingHandler.TeacherAvailability)

		api.GET("/batches", batchHandler.List)
		api.POST("/batches", batchHandler.Create)
		api.GET("/batches/:id", batchHandler.Get)
		api.PUT("/batches/:id", batchHandler.Update)
		api.DELETE("/batches/:id", batchHandler.Delete)

		api.GET("/suggestions", schedulingHandler.Suggestions)

		api.GET("/system/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
