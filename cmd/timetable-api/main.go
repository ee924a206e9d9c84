package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/uniplan/timetable-api/api/swagger"
	"github.com/uniplan/timetable-api/internal/handler"
	"github.com/uniplan/timetable-api/internal/middleware"
	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/internal/repository"
	"github.com/uniplan/timetable-api/internal/service"
	"github.com/uniplan/timetable-api/pkg/cache"
	"github.com/uniplan/timetable-api/pkg/config"
	"github.com/uniplan/timetable-api/pkg/database"
	"github.com/uniplan/timetable-api/pkg/export"
	"github.com/uniplan/timetable-api/pkg/logger"
	corsmiddleware "github.com/uniplan/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniplan/timetable-api/pkg/middleware/requestid"
)

// @title UniPlan Timetable API
// @version 1.0.0
// @description Timetable allocation, conflict detection and proposal approval service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			cfg.Cache.Enabled = false
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, cfg.Cache.CatalogTTL, logr, cfg.Cache.Enabled)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, nil, logr)
	slotSvc := service.NewSlotCatalogService(slotRepo, cacheSvc, logr)
	conflictSvc := service.NewConflictService(allocationRepo, slotSvc, metricsSvc, logr)
	allocationSvc := service.NewAllocationService(allocationRepo, sectionRepo, proposalRepo, slotSvc, cacheSvc, metricsSvc, nil, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, logr, cfg.Notifications.Enabled)
	proposalSvc := service.NewProposalService(proposalRepo, allocationRepo, slotSvc, cacheSvc, notificationSvc, export.NewPDFExporter(), nil, logr, cfg.Export.Enabled)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	slotHandler := handler.NewSlotHandler(slotSvc)
	allocationHandler := handler.NewAllocationHandler(allocationSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	proposalHandler := handler.NewProposalHandler(proposalSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/slots", slotHandler.List)

	protected.GET("/allocations", allocationHandler.List)
	protected.GET("/allocations/grid", allocationHandler.Grid)
	protected.POST("/allocations/validate", allocationHandler.Validate)
	protected.POST("/allocations",
		middleware.RequireRoles(models.RoleCoordinator, models.RoleAdmin), allocationHandler.Create)
	protected.DELETE("/allocations/:id",
		middleware.RequireRoles(models.RoleCoordinator, models.RoleAdmin), allocationHandler.Delete)

	protected.GET("/conflicts", conflictHandler.List)
	protected.GET("/conflicts/stats", conflictHandler.Stats)
	protected.POST("/conflicts/:id/resolution/validate", conflictHandler.ValidateResolution)

	protected.GET("/proposals", proposalHandler.List)
	protected.POST("/proposals",
		middleware.RequireRoles(models.RoleCoordinator, models.RoleAdmin), proposalHandler.Create)
	protected.GET("/proposals/:id", proposalHandler.Get)
	protected.GET("/proposals/:id/grid", proposalHandler.Grid)
	protected.GET("/proposals/:id/export.pdf", proposalHandler.ExportPDF)
	protected.GET("/proposals/:id/export.csv", proposalHandler.ExportCSV)
	protected.POST("/proposals/:id/submit",
		middleware.RequireRoles(models.RoleCoordinator, models.RoleAdmin), proposalHandler.Submit)
	protected.POST("/proposals/:id/approve",
		middleware.RequireRoles(models.RoleDirector, models.RoleAdmin), proposalHandler.Approve)
	protected.POST("/proposals/:id/reject",
		middleware.RequireRoles(models.RoleDirector, models.RoleAdmin), proposalHandler.Reject)
	protected.POST("/proposals/:id/reopen",
		middleware.RequireRoles(models.RoleCoordinator, models.RoleAdmin), proposalHandler.Reopen)
	protected.POST("/proposals/:id/send-back",
		middleware.RequireRoles(models.RoleDirector, models.RoleAdmin), proposalHandler.SendBack)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
