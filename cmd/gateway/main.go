// Package main is the entry point for the admin gateway.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/marketgrid/admin-gateway/internal/alert"
	"github.com/marketgrid/admin-gateway/internal/assist"
	"github.com/marketgrid/admin-gateway/internal/config"
	"github.com/marketgrid/admin-gateway/internal/feed"
	"github.com/marketgrid/admin-gateway/internal/handler"
	"github.com/marketgrid/admin-gateway/internal/middleware"
	"github.com/marketgrid/admin-gateway/internal/prefs"
	"github.com/marketgrid/admin-gateway/internal/push"
	"github.com/marketgrid/admin-gateway/internal/service"
	"github.com/marketgrid/admin-gateway/internal/upstream"
	"github.com/marketgrid/admin-gateway/pkg/logger"
	"github.com/marketgrid/admin-gateway/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting admin gateway")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "admin-gateway", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the preference store
	prefStore, err := prefs.Open(cfg.PrefsDBPath)
	if err != nil {
		log.Error("failed to open preference store", zap.Error(err))
		os.Exit(1)
	}
	defer prefStore.Close()

	// Select the push transport
	var channel push.Channel
	switch cfg.PushTransport {
	case "websocket":
		channel = push.NewWebsocketChannel(cfg.PushWebsocketURL, log)
	default:
		channel = push.NewNATSChannel(cfg.PushNATSURL, cfg.PushNATSSubject, log)
	}

	// Upstream client and feed synchronizer
	upstreamClient := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamToken)
	feedSync := feed.NewSynchronizer(upstreamClient, channel, cfg.FeedPageLimit, log)
	feedSync.SetWatchdogInterval(cfg.WatchdogInterval)
	feedSync.SetNotifier(alert.NewAudioNotifier(prefStore, feedSync.Publish, cfg.AlertSound, log))

	feedSync.Start(ctx, cfg.PushToken)
	defer feedSync.Stop()

	// Moderation service
	moderationSvc := service.NewModerationService(upstreamClient, feedSync, log)

	// Optional moderation assistant
	var assistant handler.Assistant
	if cfg.OpenAIAPIKey != "" {
		a, err := assist.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			log.Warn("failed to create assistant, suggestions disabled", zap.Error(err))
		} else {
			assistant = a
		}
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(feedSync)
	feedHandler := handler.NewFeedHandler(feedSync, cfg.FeedPageLimit, log)
	streamHandler := handler.NewStreamHandler(feedSync, log)
	itemHandler := handler.NewItemHandler(moderationSvc, assistant, log)
	prefsHandler := handler.NewPrefsHandler(prefStore, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/feed", func(r chi.Router) {
			r.Get("/", feedHandler.Snapshot)
			r.Post("/pages", feedHandler.LoadPage)
			r.Get("/stream", streamHandler.Stream)
		})

		r.Route("/items/{uuid}", func(r chi.Router) {
			r.Get("/", itemHandler.Get)
			r.Delete("/", itemHandler.CloseEdit)
			r.Post("/edit", itemHandler.BeginEdit)
			r.Patch("/edit", itemHandler.SetFields)
			r.Delete("/edit", itemHandler.CancelEdit)
			r.Post("/commit", itemHandler.Commit)
			r.Post("/assist", itemHandler.Assist)
		})

		r.Get("/reasons", itemHandler.Reasons)

		r.Route("/prefs", func(r chi.Router) {
			r.Get("/audio", prefsHandler.GetAudio)
			r.Put("/audio", prefsHandler.SetAudio)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
