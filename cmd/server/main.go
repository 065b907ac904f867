package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"godeliver/internal/config"
	"godeliver/internal/handlers"
	"godeliver/internal/middleware"
	mongorepo "godeliver/internal/repositories/mongodb"
	"godeliver/internal/services"
	"godeliver/pkg/cache"
	"godeliver/pkg/database"
	"godeliver/pkg/logger"
	"godeliver/pkg/push"
	"godeliver/pkg/websocket"
	"godeliver/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer db.Close()

	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureDispatchIndexes(setupCtx, db.Database); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	// Pre-images need mongo 6+; without them the dispatch no-op guard falls
	// back to treating every update as a fresh change, so this is best effort.
	if err := database.EnableOrderPreImages(setupCtx, db.Database); err != nil {
		log.WithError(err).Warn("could not enable order pre-images, change events will lack before-state")
	}
	setupCancel()

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisCache.Close()

	pushProvider, err := newPushProvider(cfg.Push)
	if err != nil {
		log.Fatalf("failed to initialize push provider: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()
	wsHandler := websocket.NewHandler(hub)

	orderRepo := mongorepo.NewOrderRepository(db)
	driverRepo := mongorepo.NewDriverRepository(db)
	zoneRepo := mongorepo.NewZoneRepository(db, redisCache)
	settingsRepo := mongorepo.NewSettingsRepository(db, redisCache)
	auditRepo := mongorepo.NewAuditLogRepository(db)

	notifier := services.NewNotificationService(pushProvider, log)
	notifier.Start()
	defer notifier.Stop()

	zoneService := services.NewZoneService(zoneRepo)
	locator := services.NewDriverLocator(driverRepo)
	cleanup := services.NewCleanupService(driverRepo, log)
	dispatch := services.NewDispatchService(orderRepo, driverRepo, settingsRepo, zoneService, locator, notifier, hub, log)
	assignment := services.NewAssignmentService(orderRepo, driverRepo, auditRepo, cleanup, notifier, hub, log)

	watcherCtx, watcherCancel := context.WithCancel(context.Background())
	defer watcherCancel()
	watcher := services.NewOrderWatcher(db, dispatch, cleanup, log)
	go watcher.Run(watcherCtx)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	dispatchHandler := handlers.NewDispatchHandler(assignment)

	v1 := router.Group("/api/v1")
	{
		routes.SetupDispatchRoutes(v1, dispatchHandler, wsHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		log.Infof("starting server on port %d", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	watcherCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}

func newPushProvider(cfg *config.PushConfig) (push.PushProvider, error) {
	switch cfg.Provider {
	case "apns":
		return push.NewAPNSProvider(cfg.APNS.KeyFile, cfg.APNS.KeyID, cfg.APNS.TeamID, cfg.APNS.BundleID, cfg.APNS.Production)
	case "fcm", "":
		return push.NewFCMProvider(cfg.FCM.Credentials)
	default:
		return nil, fmt.Errorf("unknown push provider: %s", cfg.Provider)
	}
}
