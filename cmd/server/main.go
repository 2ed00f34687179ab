package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/homescout/api/internal/config"
	"github.com/stwalsh4118/homescout/api/internal/database"
	apierrors "github.com/stwalsh4118/homescout/api/internal/errors"
	"github.com/stwalsh4118/homescout/api/internal/handlers"
	"github.com/stwalsh4118/homescout/api/internal/latency"
	"github.com/stwalsh4118/homescout/api/internal/logger"
	"github.com/stwalsh4118/homescout/api/internal/metrics"
	"github.com/stwalsh4118/homescout/api/internal/middleware"
	"github.com/stwalsh4118/homescout/api/internal/models"
	"github.com/stwalsh4118/homescout/api/internal/repository"
	"github.com/stwalsh4118/homescout/api/internal/savedset"
	"github.com/stwalsh4118/homescout/api/internal/seed"
	"github.com/stwalsh4118/homescout/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

// stores holds the repositories for the configured backend.
type stores struct {
	properties repository.PropertyRepository
	saved      repository.SavedRepository
	close      func()
}

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.NewWithLevel(cfg.Server.Env, cfg.Server.LogLevel)
	log.Info("Starting HomeScout API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"store":       cfg.Store.Backend,
	})

	ctx := context.Background()

	var data *seed.Data
	if cfg.Seed.Enabled {
		data, err = seed.Load(cfg.Seed.File)
		if err != nil {
			log.Fatal("Failed to load seed data", err, map[string]interface{}{
				"file": cfg.Seed.File,
			})
		}
	}

	st, err := openStores(ctx, cfg, data, log)
	if err != nil {
		log.Fatal("Failed to open stores", err, map[string]interface{}{
			"store": cfg.Store.Backend,
		})
	}
	defer st.close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Shared saved set read by every saved-list view
	tracker := savedset.New(st.saved)
	snap, err := tracker.Refresh(ctx)
	if err != nil {
		log.Fatal("Failed to load saved properties", err, nil)
	}
	m.SetSavedCount(snap.Count)

	validate := validator.New()
	propertyService := services.NewPropertyService(st.properties, validate, log)
	savedService := services.NewSavedService(st.saved, st.properties, tracker, m, validate, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> Metrics -> RateLimit
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	if m != nil {
		router.Use(middleware.Metrics(m))
	}

	stopLimiter := make(chan struct{})
	if cfg.RateLimitEnabled() {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(stopLimiter)
		router.Use(middleware.RateLimit(limiter, apierrors.TooManyRequests))
	}

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(st.properties, st.saved, cfg.Server.Env, cfg.Store.Backend)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Register API v1 routes
	handlers.RegisterRoutes(
		router.Group("/api/v1"),
		handlers.NewPropertyHandler(propertyService),
		handlers.NewSavedHandler(savedService),
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)
	close(stopLimiter)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}

// openStores builds the repositories for cfg.Store.Backend and loads data
// into them when seeding is enabled.
func openStores(ctx context.Context, cfg *config.Config, data *seed.Data, log *logger.Logger) (*stores, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})

		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}

		if data != nil {
			if err := repository.SeedProperties(ctx, db, data.Properties); err != nil {
				db.Close()
				return nil, err
			}
			if err := repository.SeedSaved(ctx, db, data.Saved); err != nil {
				db.Close()
				return nil, err
			}
			log.Info("Seed data applied", map[string]interface{}{
				"properties": len(data.Properties),
				"saved":      len(data.Saved),
			})
		}

		return &stores{
			properties: repository.NewPostgresPropertyRepository(db),
			saved:      repository.NewPostgresSavedRepository(db),
			close:      db.Close,
		}, nil

	default:
		sim := latency.New(cfg.Store.LatencyMinMS, cfg.Store.LatencyMaxMS)

		var seedProperties []models.Property
		var seedSaved []models.SavedProperty
		if data != nil {
			seedProperties = data.Properties
			seedSaved = data.Saved
		}

		log.Info("Using in-memory store", map[string]interface{}{
			"properties": len(seedProperties),
			"saved":      len(seedSaved),
			"latency_ms": fmt.Sprintf("%d-%d", cfg.Store.LatencyMinMS, cfg.Store.LatencyMaxMS),
		})

		return &stores{
			properties: repository.NewMemoryPropertyRepository(seedProperties, sim),
			saved:      repository.NewMemorySavedRepository(seedSaved, sim),
			close:      func() {},
		}, nil
	}
}
