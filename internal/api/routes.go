// Package api wires the HTTP surface: /generate, /health, the optional
// prediction history and the MCP endpoint.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/api/handlers"
	apimiddleware "github.com/matiasleandrokruk/dispatchrag/internal/api/middleware"
)

// Deps are the services behind the routes. Predictions and MCP are
// optional; their routes are only mounted when set.
type Deps struct {
	Generator   handlers.Generator
	Providers   handlers.Availability
	Predictions handlers.PredictionLister
	MCP         http.Handler
	Logger      *zap.Logger
}

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(d Deps) *chi.Mux {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimiddleware.AccessLog(logger.Named("http")))
	r.Use(apimiddleware.Recoverer(logger.Named("http")))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Mcp-Session-Id", "Mcp-Protocol-Version"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.NewHealthHandler(d.Providers).Health)
	r.Post("/generate", handlers.NewGenerateHandler(d.Generator).Generate)

	if d.Predictions != nil {
		r.Get("/predictions", handlers.NewPredictionsHandler(d.Predictions).List)
	}

	if d.MCP != nil {
		r.Handle("/mcp", d.MCP)
		r.Handle("/mcp/*", d.MCP)
	}

	return r
}
