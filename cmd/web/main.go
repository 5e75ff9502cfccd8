package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/habitat-inmuebles/habitat-web/internal/adapters/cache"
	"github.com/habitat-inmuebles/habitat-web/internal/api/handlers"
	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/api/routes"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/redis"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
	"github.com/habitat-inmuebles/habitat-web/pkg/config"
	"github.com/habitat-inmuebles/habitat-web/pkg/retry"
)

func main() {
	// Load .env in development; a missing file is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Redis client; continuing without page cache")
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized successfully")
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if redisClient != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cache.NewRedisAdapter(redisClient))
		logger.Info().Msg("Cache middleware initialized successfully")
	}

	// Initialize the backend API client
	backend := backendapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	// Warm the settings resolver before serving. Retried because the
	// backend may still be starting alongside us; the resolver serves
	// its defaults if the warm load ultimately fails.
	settings := services.NewSettingsService(backend)
	if err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return settings.Refresh(ctx)
	}); err != nil {
		logger.Warn().Err(err).Msg("Settings warm load failed; serving defaults")
	}
	go settings.StartPeriodicRefresh(ctx, cfg.Site.SettingsRefresh)

	// Session and rendering plumbing
	sessions := session.NewManager(cfg.Site.SessionCookie)
	renderer, err := handlers.NewRenderer(settings, sessions)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	maps := services.NewMapService(cfg.Site.FallbackLatitude, cfg.Site.FallbackLongitude)

	// Initialize handlers
	publicHandler := handlers.NewPublicHandler(backend, settings, renderer)
	listingHandler := handlers.NewListingHandler(backend, maps, renderer, cfg.Site.CategoryExclusions)
	contactHandler := handlers.NewContactHandler(backend, settings, sessions, renderer)
	authHandler := handlers.NewAuthHandler(backend, sessions, renderer)
	dashboardHandler := handlers.NewDashboardHandler(backend, settings, renderer)
	propertiesAdmin := handlers.NewAdminPropertiesHandler(backend, sessions, renderer)
	teamAdmin := handlers.NewAdminTeamHandler(backend, sessions, renderer)
	usersAdmin := handlers.NewAdminUsersHandler(backend, sessions, renderer)
	contactsAdmin := handlers.NewAdminContactsHandler(backend, sessions, renderer)
	settingsAdmin := handlers.NewAdminSettingsHandler(backend, settings, sessions, renderer)

	guard := middleware.NewSessionGuard(backend, sessions, settings)

	// Set up router
	router := routes.NewRouter(
		publicHandler,
		listingHandler,
		contactHandler,
		authHandler,
		dashboardHandler,
		propertiesAdmin,
		teamAdmin,
		usersAdmin,
		contactsAdmin,
		settingsAdmin,
		guard,
		sessions,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}

	logger.Info().Msg("Server stopped")
}
