package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/BlieNuckel/tunarr/internal/api/handlers"
	"github.com/BlieNuckel/tunarr/internal/api/middleware"
	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/controllers"
)

// Version is reported by /health
var Version = "dev"

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	searchCtrl   *controllers.SearchController
	downloadCtrl *controllers.DownloadController
	logger       *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, searchCtrl *controllers.SearchController, downloadCtrl *controllers.DownloadController, logger *logrus.Logger) *Server {
	s := &Server{
		searchCtrl:   searchCtrl,
		downloadCtrl: downloadCtrl,
		logger:       logger,
	}

	s.server = &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     s.Handler(cfg),
		ReadTimeout: 15 * time.Second,
		// Searches block for up to the slskd search timeout plus polling grace
		WriteTimeout: cfg.SearchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped route tree
func (s *Server) Handler(cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	return otelhttp.NewHandler(middleware.Logging(mux, s.logger), "tunarr",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	)
}

func handle(mux *http.ServeMux, pattern, route string, h http.Handler) {
	mux.Handle(pattern, middleware.Metrics(route, h))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	healthHandler := handlers.NewHealthHandler(Version, s.logger)
	handle(mux, "/health", "/health", healthHandler)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.searchCtrl, s.downloadCtrl, s.logger)
	handle(mux, "/status", "/status", statusHandler)

	mux.Handle("/metrics", promhttp.Handler())

	// Torznab indexer
	torznabHandler := handlers.NewTorznabHandler(cfg, s.searchCtrl, s.logger)
	handle(mux, "GET /api/torznab", "/api/torznab", torznabHandler)
	handle(mux, "GET /api/torznab/{$}", "/api/torznab", torznabHandler)
	handle(mux, "GET /api/torznab/api", "/api/torznab", torznabHandler)
	handle(mux, "GET /api/torznab/download/{id}", "/api/torznab/download", http.HandlerFunc(torznabHandler.Download))

	// SABnzbd download client
	sabnzbdHandler := handlers.NewSABnzbdHandler(cfg, s.downloadCtrl, s.logger)
	handle(mux, "/api/sabnzbd/api", "/api/sabnzbd/api", sabnzbdHandler)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
