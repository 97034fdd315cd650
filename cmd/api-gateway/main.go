package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/absensi-qr-api/api/swagger"
	"github.com/noah-isme/absensi-qr-api/internal/handler"
	"github.com/noah-isme/absensi-qr-api/internal/middleware"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/repository"
	"github.com/noah-isme/absensi-qr-api/internal/service"
	"github.com/noah-isme/absensi-qr-api/pkg/cache"
	"github.com/noah-isme/absensi-qr-api/pkg/config"
	"github.com/noah-isme/absensi-qr-api/pkg/database"
	"github.com/noah-isme/absensi-qr-api/pkg/export"
	"github.com/noah-isme/absensi-qr-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/absensi-qr-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/absensi-qr-api/pkg/middleware/requestid"
)

// @title Absensi QR API
// @version 1.0.0
// @description QR based school attendance service
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	// Redis is optional. Without it the dashboard recomputes every request.
	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled && cacheRepo != nil)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db).WithMetrics(metricsSvc)
	studentRepo := repository.NewStudentRepository(db).WithMetrics(metricsSvc)
	attendanceRepo := repository.NewAttendanceRepository(db).WithMetrics(metricsSvc)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, cacheSvc, validate, logr)
	statsSvc := service.NewStatsService(attendanceRepo, studentRepo, cacheSvc, logr, service.StatsServiceConfig{
		CacheTTL: cfg.Stats.CacheTTL,
	})
	exportSvc := service.NewExportService(attendanceRepo, statsSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	dashboardHandler := handler.NewDashboardHandler(statsSvc, metricsSvc)
	reportHandler := handler.NewReportHandler(statsSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	students := protected.Group("/students")
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.POST("/search-by-qr", studentHandler.SearchByQR)
	students.POST("", middleware.RequireRoles(models.RoleAdmin), studentHandler.Create)
	students.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), studentHandler.Update)
	students.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), studentHandler.Delete)
	students.POST("/:id/deactivate", middleware.RequireRoles(models.RoleAdmin), studentHandler.Deactivate)

	attendance := protected.Group("/attendance")
	attendance.GET("", attendanceHandler.List)
	attendance.GET("/:id", attendanceHandler.Get)
	attendance.POST("", attendanceHandler.Record)
	attendance.PUT("/:id", attendanceHandler.Update)

	stats := protected.Group("/stats")
	stats.GET("/dashboard", dashboardHandler.Stats)
	stats.GET("/system", dashboardHandler.System)

	reports := protected.Group("/reports")
	reports.GET("/attendance", reportHandler.Attendance)

	exports := protected.Group("/export")
	exports.GET("/attendance-csv", reportHandler.ExportCSV)
	exports.GET("/attendance-pdf", reportHandler.ExportPDF)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
