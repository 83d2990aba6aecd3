// Package server exposes the analysis, watchlist and alert APIs over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"FriendlyTicker/internal/alerts"
	"FriendlyTicker/internal/analysis"
	"FriendlyTicker/internal/scheduler"
	"FriendlyTicker/internal/watchlist"
)

// Config holds server configuration.
type Config struct {
	Port       int
	Analyzer   analysis.Analyzer
	Watchlists *watchlist.Store
	AlertStore *alerts.Store
	Scheduler  *scheduler.Scheduler
	Log        zerolog.Logger
}

// Server is the HTTP front of the application.
type Server struct {
	router     *chi.Mux
	server     *http.Server
	analyzer   analysis.Analyzer
	watchlists *watchlist.Store
	alertStore *alerts.Store
	sched      *scheduler.Scheduler
	log        zerolog.Logger
}

// New creates the HTTP server and mounts all routes.
func New(cfg Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		analyzer:   cfg.Analyzer,
		watchlists: cfg.Watchlists,
		alertStore: cfg.AlertStore,
		sched:      cfg.Scheduler,
		log:        cfg.Log.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/analyze/{ticker}", s.handleAnalyze)
		r.Post("/score", s.handleScore)

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleWatchlistGet)
			r.Post("/", s.handleWatchlistAdd)
			r.Delete("/{ticker}", s.handleWatchlistRemove)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", s.handleAlertsList)
			r.Post("/", s.handleAlertsSubscribe)
			r.Delete("/{ticker}", s.handleAlertsUnsubscribe)
			r.Post("/run", s.handleAlertsRun)
		})
	})
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
