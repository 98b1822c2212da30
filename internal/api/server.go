// Package api provides the HTTP API server and handlers for the Recipe Box server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/recipebox/recipebox-server/internal/http/response"
	"github.com/recipebox/recipebox-server/internal/metrics"
	"github.com/recipebox/recipebox-server/internal/ratelimit"
	"github.com/recipebox/recipebox-server/internal/service"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options holds the optional collaborators of the HTTP server.
// Nil fields disable the corresponding feature.
type Options struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string

	// RateLimiter limits requests per client IP.
	RateLimiter *ratelimit.KeyedRateLimiter

	// Metrics records request metrics and serves /metrics.
	Metrics *metrics.Metrics

	// Events serves the live change stream at /api/recipes/events.
	Events http.Handler
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	recipes *service.RecipeService
	opts    Options
	router  *chi.Mux
	api     huma.API
	logger  *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(recipes *service.RecipeService, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		recipes: recipes,
		opts:    opts,
		router:  chi.NewRouter(),
		logger:  logger,
	}

	// Middleware must be in place before huma mounts its first route.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Recipe Box API", Version)
	humaConfig.Info.Description = "Create, list, fetch, search and delete recipes."
	// Responses are plain JSON without a $schema link.
	humaConfig.CreateHooks = nil

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(corsOptions(s.opts.AllowedOrigins)))

	if s.opts.Metrics != nil {
		s.router.Use(s.opts.Metrics.Middleware)
	}

	if s.opts.RateLimiter != nil {
		var onReject func()
		if s.opts.Metrics != nil {
			onReject = s.opts.Metrics.RateLimited
		}
		s.router.Use(RateLimitMiddleware(s.opts.RateLimiter, onReject, s.logger))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, msgNotFound, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, msgMethodNotAllowed, s.logger)
	})

	s.registerHealthRoutes()
	s.registerRecipeRoutes()

	// Streaming and scrape endpoints bypass huma.
	if s.opts.Events != nil {
		s.router.Get("/api/recipes/events", s.opts.Events.ServeHTTP)
	}
	if s.opts.Metrics != nil {
		s.router.Get("/metrics", s.opts.Metrics.Handler().ServeHTTP)
	}
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
}
