package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/api"
	"storefront/config"
	"storefront/db"
	"storefront/metrics"
	"storefront/realtime"
	"storefront/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// @title           Storefront API
// @version         1.0.0

// @description     ## Storefront API
// @description
// @description     A small storefront: a product catalog anyone can browse and search, shopper accounts with a per-user search history, and admin-only product management.
// @description
// @description     **Real-time updates:** connect a WebSocket to `/ws`. The server first sends the full catalog, then one message per catalog change:
// @description     ```json
// @description     {"event": "productsUpdated", "data": [ ...products ]}
// @description     {"event": "productAdded",    "data": { ...product }}
// @description     {"event": "productUpdated",  "data": { ...product }}
// @description     {"event": "productDeleted",  "data": 1712345678901}
// @description     ```
// @description
// @description     **Authentication:** `POST /api/admin/login` returns an admin token for the product mutation endpoints; `POST /api/users/login` returns a user token for that user's own account endpoints.

// @license.name  MIT

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL: Failed to load configuration: %v", err)
	}
	utils.SetupLogging(cfg.LogLevel, cfg.LogFormat)
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// --- Stores ---
	catalog, err := db.NewCatalogStore(cfg, nil)
	if err != nil {
		return fmt.Errorf("initializing catalog: %w", err)
	}
	users, err := db.NewUserStore(cfg)
	if err != nil {
		return fmt.Errorf("initializing users: %w", err)
	}

	// --- Real-time ---
	hub := realtime.NewHub(catalog.WithSnapshot, cfg.CORSOrigins)
	defer hub.Close()

	var notifier db.Notifier = hub
	if cfg.RedisURL != "" {
		relay, err := realtime.NewRedisRelay(ctx, cfg.RedisURL, catalog, hub)
		if err != nil {
			log.WithError(err).Warn("Redis relay unavailable, broadcasting to local clients only")
		} else {
			defer relay.Close()
			notifier = relay
			go func() {
				if err := relay.Run(ctx); err != nil {
					log.WithError(err).Error("Redis relay stopped")
				}
			}()
		}
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(registry, hub.ClientCount)
	catalog.SetNotifier(collector.CountEvents(notifier))

	// --- HTTP ---
	router := api.NewRouter(api.Dependencies{
		Config:  cfg,
		Catalog: catalog,
		Users:   users,
		Hub:     hub,
		Metrics: collector,
	})

	listenAddr := fmt.Sprintf("%s:%s", cfg.ListenAddress, cfg.ListenPort)
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", listenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Graceful shutdown incomplete")
	}
	return nil
}
