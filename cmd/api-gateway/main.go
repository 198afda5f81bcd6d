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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/room-booking-api/api/swagger"
	"github.com/noah-isme/room-booking-api/internal/clock"
	"github.com/noah-isme/room-booking-api/internal/handler"
	internalmiddleware "github.com/noah-isme/room-booking-api/internal/middleware"
	"github.com/noah-isme/room-booking-api/internal/repository"
	"github.com/noah-isme/room-booking-api/internal/service"
	"github.com/noah-isme/room-booking-api/pkg/cache"
	"github.com/noah-isme/room-booking-api/pkg/config"
	"github.com/noah-isme/room-booking-api/pkg/database"
	"github.com/noah-isme/room-booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/room-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/room-booking-api/pkg/middleware/requestid"
)

// @title Room Booking API
// @version 1.0.0
// @description Room directory and event scheduler that never double-books a room
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	clk := clock.NewSystem()

	var (
		cacheSvc *service.CacheService
		notifier *service.NotificationService
	)
	if cfg.Cache.Enabled || cfg.Notifications.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache and notifications", zap.Error(err))
		} else {
			defer redisClient.Close()
			if cfg.Cache.Enabled {
				cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, "booking"), metricsSvc, cfg.Cache.TTL, logr, true)
			}
			if cfg.Notifications.Enabled {
				notifier = service.NewNotificationService(repository.NewNotificationRepository(redisClient), service.NotificationConfig{
					Channel: cfg.Notifications.Channel,
					Workers: cfg.Notifications.Workers,
					Retries: cfg.Notifications.Retries,
				}, clk, metricsSvc, logr)
				notifier.Start(ctx)
				defer notifier.Stop()
			}
		}
	}

	validate := validator.New()
	roomRepo := repository.NewRoomRepository(db)
	eventRepo := repository.NewEventRepository(db)

	roomSvc := service.NewRoomService(roomRepo, eventRepo, cacheSvc, validate, logr)
	eventSvc := service.NewEventService(eventRepo, roomRepo, cacheSvc, notifier, metricsSvc, clk, service.EventServiceConfig{
		DefaultUpcomingLimit: cfg.Booking.DefaultUpcomingLimit,
		MaxUpcomingLimit:     cfg.Booking.MaxUpcomingLimit,
	}, validate, logr)
	exportSvc := service.NewExportService(eventSvc, clk, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Rooms:   handler.NewRoomHandler(roomSvc),
		Events:  handler.NewEventHandler(eventSvc, exportSvc),
		Metrics: handler.NewMetricsHandler(metricsSvc, db, logr),
	}, cfg.Metrics.Enabled)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
