package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shiftsense/attendance-api/api/swagger"
	"github.com/shiftsense/attendance-api/internal/handler"
	"github.com/shiftsense/attendance-api/internal/models"
	"github.com/shiftsense/attendance-api/internal/repository"
	"github.com/shiftsense/attendance-api/internal/service"
	"github.com/shiftsense/attendance-api/pkg/cache"
	"github.com/shiftsense/attendance-api/pkg/config"
	"github.com/shiftsense/attendance-api/pkg/database"
	"github.com/shiftsense/attendance-api/pkg/jobs"
	"github.com/shiftsense/attendance-api/pkg/logger"
	corsmiddleware "github.com/shiftsense/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/shiftsense/attendance-api/pkg/middleware/requestid"
)

// @title ShiftSense Attendance API
// @version 0.1.0
// @description Shift-matching and attendance classification engine
// @BasePath /
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
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Attendance.CacheEnabled
	if cacheEnabled {
		redisClient, rerr := cache.NewRedis(cfg.Redis)
		if rerr != nil {
			logr.Sugar().Warnw("redis unavailable, batch cache disabled", "error", rerr)
			cacheEnabled = false
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Attendance.CacheTTL, logr, cacheEnabled)

	workingDayStart, err := models.ParseTimeOfDay(cfg.Attendance.WorkingDayStart)
	if err != nil {
		logr.Sugar().Fatalw("invalid working day start", "value", cfg.Attendance.WorkingDayStart, "error", err)
	}
	engine := service.EngineConfig{
		OrgOffset:           time.Duration(cfg.Attendance.OrgUTCOffsetMinutes) * time.Minute,
		DefaultGraceMinutes: cfg.Attendance.DefaultGraceMinutes,
		WorkingDayEnabled:   cfg.Attendance.WorkingDayEnabled,
		WorkingDayStart:     workingDayStart,
	}

	employees := repository.NewEmployeeRepository(db)
	patterns := repository.NewPatternRepository(db)
	exceptions := repository.NewScheduleExceptionRepository(db)
	leaves := repository.NewLeaveRepository(db)
	punches := repository.NewPunchRepository(db, logr)
	results := repository.NewAttendanceResultRepository(db)

	attendanceSvc := service.NewAttendanceService(employees, patterns, exceptions, leaves, punches, engine, logr)
	batchSvc := service.NewBatchService(employees, results, attendanceSvc, cacheSvc, metrics, logr,
		cfg.Attendance.BatchConcurrency, cfg.Attendance.CacheTTL)
	exportSvc := service.NewExportService(attendanceSvc, batchSvc, logr)

	recomputeSvc := service.NewRecomputeService(batchSvc, jobs.QueueConfig{
		Workers:    cfg.Recompute.Workers,
		BufferSize: cfg.Recompute.BufferSize,
		MaxRetries: cfg.Recompute.MaxRetries,
		RetryDelay: cfg.Recompute.RetryDelay,
		Logger:     logr,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recomputeSvc.Start(ctx)
	defer recomputeSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(metricsMiddleware(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	validate := validator.New()
	handler.NewAttendanceHandler(attendanceSvc, batchSvc, recomputeSvc, validate).Register(api)
	if cfg.Export.Enabled {
		handler.NewExportHandler(exportSvc).Register(api)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

func metricsMiddleware(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
