package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"newsdesk/api/analytics"
	"newsdesk/api/config"
	"newsdesk/api/database"
	"newsdesk/api/enrichment"
	"newsdesk/api/handlers"
	"newsdesk/api/logger"
	"newsdesk/api/metrics"
	"newsdesk/api/middleware"
	"newsdesk/api/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", logger.Error(err))
	}

	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL (users, brands, articles) ---
	dbClient, err := database.NewPostgresDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to initialize PostgreSQL database", logger.Error(err))
	}
	defer dbClient.Close()

	// --- ClickHouse (page view facts) ---
	chClient, err := database.NewClickHouseDB(cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to initialize ClickHouse database", logger.Error(err))
	}
	defer chClient.Close()

	geo, err := enrichment.NewGeoResolver(cfg.Tracking.GeoIPPath, log)
	if err != nil {
		log.Warn("GeoIP database unavailable, geography will be empty", logger.Error(err))
	}
	defer geo.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	userStore := store.NewUserStore(dbClient.DB)
	contentStore := store.NewContentStore(dbClient.DB)
	pageViewStore := store.NewPageViewStore(chClient)

	recorder := middleware.NewPageViewRecorder(contentStore, pageViewStore, geo, log, m, middleware.RecorderConfig{
		QueueSize:  cfg.Tracking.QueueSize,
		Workers:    cfg.Tracking.Workers,
		JobTimeout: cfg.Tracking.JobTimeout,
	})
	recorder.Start()

	r, err := newRouter(cfg, log, routes{
		auth:      handlers.NewAuthHandlers(userStore, cfg.Auth.JWTSecret, cfg.Server.ReleaseMode, log),
		articles:  handlers.NewArticleHandlers(contentStore, log),
		analytics: handlers.NewAnalyticsHandlers(analytics.NewService(pageViewStore, contentStore, log, m), log),
		recorder:  recorder,
	})
	if err != nil {
		log.Fatal("Failed to configure router", logger.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info("API server starting", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("API server failed to start", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}

	// Pending views are written before the stores close.
	recorder.Stop()
	log.Info("Server exiting.")
}
