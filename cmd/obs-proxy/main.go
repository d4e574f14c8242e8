package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/selimk/obs-catalog-api/api/swagger"
	"github.com/selimk/obs-catalog-api/internal/dto"
	"github.com/selimk/obs-catalog-api/internal/handler"
	"github.com/selimk/obs-catalog-api/internal/middleware"
	"github.com/selimk/obs-catalog-api/internal/obs"
	"github.com/selimk/obs-catalog-api/internal/service"
	"github.com/selimk/obs-catalog-api/pkg/config"
	"github.com/selimk/obs-catalog-api/pkg/logger"
	corsmiddleware "github.com/selimk/obs-catalog-api/pkg/middleware/cors"
	reqidmiddleware "github.com/selimk/obs-catalog-api/pkg/middleware/requestid"
)

// @title OBS Catalog Proxy API
// @version 0.1.0
// @description Read-through cache and CRN lookup service in front of the public OBS course catalog
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

	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(engine); err != nil {
			logr.Sugar().Fatalw("failed to register validators", "error", err)
		}
	}

	metricsSvc := service.NewMetricsService()
	client := obs.NewClient(cfg.OBS, &http.Client{}, logr)
	catalogSvc := service.NewCatalogService(service.CatalogServiceParams{
		Fetcher: client,
		Metrics: metricsSvc,
		Logger:  logr,
		Config: service.CatalogServiceConfig{
			CacheTTL:      cfg.Catalog.CacheTTL,
			MaxCacheDepts: cfg.Catalog.MaxCacheDepts,
		},
	})
	lookupSvc := service.NewLookupService(catalogSvc, logr)
	exportSvc := service.NewExportService(service.ExportServiceParams{
		Catalog: catalogSvc,
		Lookup:  lookupSvc,
		Logger:  logr,
		Enabled: cfg.Exports.Enabled,
	})

	catalogHandler := handler.NewCatalogHandler(catalogSvc, lookupSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/departments", catalogHandler.Departments)
		api.GET("/departments/:id/courses", catalogHandler.Courses)
		api.GET("/departments/:id/export", exportHandler.DepartmentExport)
		api.GET("/crn/:crn", catalogHandler.LookupCRN)
		api.POST("/crn/lookup", catalogHandler.LookupCRNBatch)
		api.POST("/timetable/export", exportHandler.TimetableExport)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
