// Package server exposes search, recommendations and cache administration
// over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lepinkainen/bookreel/internal/cache"
	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/recommend"
)

// Recommender is the part of recommend.Service the handlers use.
type Recommender interface {
	Search(ctx context.Context, query string, typ media.Type) ([]media.Item, error)
	GetRecommendations(ctx context.Context, id string) (*recommend.Response, error)
}

// CacheAdmin reports on and empties the result cache.
type CacheAdmin interface {
	Stats() cache.Stats
	Clear() int
}

var (
	_ Recommender = (*recommend.Service)(nil)
	_ CacheAdmin  = (*cache.Cache)(nil)
)

// Config configures the HTTP server.
type Config struct {
	Addr            string
	RateLimit       int // requests per minute per client IP, 0 disables
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the bookreel HTTP API.
type Server struct {
	cfg     Config
	svc     Recommender
	cache   CacheAdmin
	handler http.Handler
}

// New builds the server and its router.
func New(svc Recommender, c CacheAdmin, cfg Config) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{cfg: cfg, svc: svc, cache: c}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(s.cfg.RateLimit))
		if s.cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
		}

		r.Get("/search", s.handleSearchQuery)
		r.Post("/search", s.handleSearch)
		r.Post("/get_recommendations", s.handleGetRecommendations)
		r.Get("/recommendations/{id}", s.handleRecommendationsByID)

		r.Get("/cache/stats", s.handleCacheStats)
		r.Post("/cache/clear", s.handleCacheClear)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
