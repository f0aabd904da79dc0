// Package api provides the HTTP API server and handlers for the SnapTag application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/snaptagapp/snaptag-server/internal/catalog"
	"github.com/snaptagapp/snaptag-server/internal/collection"
	"github.com/snaptagapp/snaptag-server/internal/export"
	"github.com/snaptagapp/snaptag-server/internal/http/response"
	"github.com/snaptagapp/snaptag-server/internal/ratelimit"
	"github.com/snaptagapp/snaptag-server/internal/selection"
	"github.com/snaptagapp/snaptag-server/internal/store"
	"github.com/snaptagapp/snaptag-server/internal/validation"
)

// Version is reported by the health endpoint and the OpenAPI document.
const Version = "0.3.0"

// Services groups the business logic services used by the API server.
type Services struct {
	Catalog    *catalog.Service
	Images     *collection.Manager
	Selections *selection.Manager
	Exporter   *export.Exporter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *store.Store
	services  *Services
	validator *validation.Validator
	limiter   *ratelimit.Limiter
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, services *Services, logger *slog.Logger) *Server {
	s := &Server{
		store:     store,
		services:  services,
		validator: validation.New(),
		limiter:   ratelimit.New(20, 40),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("SnapTag API", Version)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(s.rateLimit)
}

// setupRoutes configures all HTTP routes. Catalog and export go through
// huma typed operations; image and selection endpoints are plain chi
// handlers.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.registerGroupRoutes()
	s.registerExportRoutes()

	s.router.Route("/api/v1/images", func(r chi.Router) {
		r.Get("/", s.handleListImages)
		r.Post("/", s.handleCapture)
		r.Delete("/", s.handleClearImages)
		r.Delete("/{id}", s.handleDeleteImage)

		r.Route("/{id}/selection", func(r chi.Router) {
			r.Post("/", s.handleOpenSelection)
			r.Get("/", s.handleGetSelection)
			r.Delete("/", s.handleDiscardSelection)
			r.Post("/toggle", s.handleToggleTag)
			r.Put("/time-tag", s.handleSetTimeTag)
			r.Delete("/time-tag", s.handleRemoveTimeTag)
			r.Delete("/tags", s.handleClearSelection)
			r.Post("/commit", s.handleCommitSelection)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"version": Version,
	}, s.logger)
}
