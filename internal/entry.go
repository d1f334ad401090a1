// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/sitegraph/internal/api"
	"github.com/starford/sitegraph/internal/graphservice"
	"github.com/starford/sitegraph/internal/metrics"
	"github.com/starford/sitegraph/internal/sitegraph"
	"github.com/starford/sitegraph/internal/sse"
	"github.com/starford/sitegraph/internal/viewer"
)

const sceneThrottle = 100 * time.Millisecond

// NewLogger returns the JSON logger used by every entry point.
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// NewHandler builds the root HTTP handler: health, metrics and the API
// under /api.
func NewHandler(cfg *Config, svc *graphservice.Service, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.Scene(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	return r
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = NewLogger(cfg)
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("graph_source", cfg.Graph.Source),
		slog.Int("fps", cfg.Viewer.FPS),
		slog.Bool("watch", cfg.Graph.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	src, err := OpenSource(cfg.Graph, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	doc, err := src.Document()
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	// SSE broker.
	broker := sse.NewBroker(sceneThrottle)
	defer broker.Close()

	loop := viewer.New(doc, viewer.Options{
		Scene:     cfg.SceneOptions(),
		FPS:       cfg.Viewer.FPS,
		Frames:    app.frames,
		Publisher: broker,
		Logger:    logger,
	})
	defer loop.Close()
	logger.Info("viewer: tick loop started",
		slog.String("session", loop.ID()),
		slog.Int("nodes", len(doc.Nodes)))

	svc := graphservice.New(loop, src.Searcher())

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           NewHandler(cfg, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Graph.Watch {
		g.Go(func() error {
			return src.Watch(gCtx, broker.PublishSourceEvent, func(next *sitegraph.Document) {
				if err := loop.ReplaceGraph(gCtx, next); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("watcher: replace graph failed", slog.String("error", err.Error()))
				}
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Closing the broker ends open SSE streams so Shutdown can drain.
		broker.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		loop.Close()

		// Cancels gCtx so the watcher stops too.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")
