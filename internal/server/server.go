// Package server provides the HTTP server and routing for Chronodemica.
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

	"github.com/codingBeanie/Chronodemica/internal/config"
	"github.com/codingBeanie/Chronodemica/internal/database"
	coalitionhandlers "github.com/codingBeanie/Chronodemica/internal/modules/coalitions/handlers"
	electionhandlers "github.com/codingBeanie/Chronodemica/internal/modules/election/handlers"
	registryhandlers "github.com/codingBeanie/Chronodemica/internal/modules/registry/handlers"
	statisticshandlers "github.com/codingBeanie/Chronodemica/internal/modules/statistics/handlers"
	transferhandlers "github.com/codingBeanie/Chronodemica/internal/modules/transfer/handlers"
	"github.com/codingBeanie/Chronodemica/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log            zerolog.Logger
	DB             *database.DB
	Config         *config.Config
	Registry       *registryhandlers.Handler
	Election       *electionhandlers.Handler
	Coalitions     *coalitionhandlers.Handler
	Statistics     *statisticshandlers.Handler
	Transfer       *transferhandlers.Handler
	Scheduler      *scheduler.Scheduler
	MaintenanceJob scheduler.Job
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	systemHandlers *SystemHandlers
	cfg            Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}
	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.DB, cfg.Scheduler, cfg.MaintenanceJob)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.systemHandlers.HandleHealth)
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.systemHandlers.HandleSystemHealth)
			r.Post("/maintenance", s.systemHandlers.HandleTriggerMaintenance)
		})

		r.Route("/v1", func(r chi.Router) {
			s.cfg.Registry.RegisterRoutes(r)
			s.cfg.Election.RegisterRoutes(r)
			s.cfg.Coalitions.RegisterRoutes(r)
			s.cfg.Statistics.RegisterRoutes(r)
			s.cfg.Transfer.RegisterRoutes(r)
		})
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Config.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
