// Package httpserver assembles the chi router and the http.Server for the
// maintenance API.
package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pmtrack/internal/metrics"
	"git.home.luguber.info/inful/pmtrack/internal/server/handlers"
	"git.home.luguber.info/inful/pmtrack/internal/server/middleware"
)

// Server is the API server.
type Server struct {
	Addr   string
	router *chi.Mux
	server *http.Server
}

// Options configures the server beyond its handler set.
type Options struct {
	Addr     string
	Log      *slog.Logger
	Recorder metrics.Recorder
	// Registry enables the /metrics endpoint when non-nil.
	Registry *prom.Registry
}

// New creates the API server and mounts all routes.
func New(api *handlers.API, opts Options) *Server {
	s := &Server{
		Addr:   opts.Addr,
		router: chi.NewRouter(),
	}
	s.setupRoutes(api, opts)

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(api *handlers.API, opts Options) {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.RequestLogger(opts.Log, opts.Recorder))
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(30 * time.Second))

	s.router.Get("/health", api.HandleHealth)
	if opts.Registry != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(opts.Registry))
	}

	// Programs and tasks
	s.router.Post("/programs", api.HandleCreateProgram)
	s.router.Get("/programs", api.HandleListPrograms)
	s.router.Get("/programs/{id}", api.HandleGetProgram)
	s.router.Patch("/programs/{id}", api.HandleRenameProgram)
	s.router.Post("/programs/{id}/tasks", api.HandleAddTask)
	s.router.Put("/tasks/{id}", api.HandleUpdateTask)

	// Generic active/inactive toggle
	s.router.Post("/status/toggle", api.HandleToggleStatus)

	// Properties, wings and assignments
	s.router.Post("/properties", api.HandleCreateProperty)
	s.router.Get("/properties", api.HandleListProperties)
	s.router.Get("/properties/{id}", api.HandleGetProperty)
	s.router.Post("/properties/{id}/wings", api.HandleAddWing)
	s.router.Get("/properties/{id}/wings", api.HandleListWings)
	s.router.Get("/properties/{id}/tasks", api.HandleResolveTasks)
	s.router.Put("/wings/{id}/programs", api.HandleAssignPrograms)

	// Checklists
	s.router.Post("/categories", api.HandleCreateCategory)
	s.router.Get("/categories", api.HandleListCategories)
	s.router.Patch("/categories/{id}", api.HandleRenameCategory)
	s.router.Post("/categories/{id}/items", api.HandleCreateItem)
	s.router.Get("/categories/{id}/items", api.HandleListItems)
	s.router.Put("/items/{id}", api.HandleUpdateItem)
	s.router.Get("/items/next-code", api.HandleNextCode)

	// Scheduler
	s.router.Post("/runner/run", api.HandleTriggerRun)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
