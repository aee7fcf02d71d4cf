package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openrewards/cardperk/internal/catalog"
	"github.com/openrewards/cardperk/internal/domain"
	"github.com/openrewards/cardperk/internal/promo"
	"github.com/openrewards/cardperk/internal/rewards"
	"github.com/openrewards/cardperk/internal/spending"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, repo domain.Repository, cache domain.Cache, bus domain.EventBus, registry *catalog.Registry, processor *rewards.Processor, promoEngine *promo.Engine, spendTracker *spending.Service, version string) *Server {
	handler := NewHandler(repo, cache, bus, registry, processor, promoEngine, spendTracker, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints (no tenant required)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// API routes (tenant required)
	router.Route("/", func(r chi.Router) {
		r.Use(TenantMiddleware)

		// Spend evaluation
		r.Post("/evaluate", handler.Evaluate)
		r.Post("/evaluate/cards", handler.EvaluateCards)

		// Evaluation and spend retrieval
		r.Get("/evaluations/{id}", handler.GetEvaluation)
		r.Get("/spends/{id}", handler.GetSpend)

		// Product catalog
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)
		r.Post("/products/{id}/questions", handler.ProductQuestions)

		// Promo rule management
		r.Get("/promos", handler.ListPromos)
		r.Get("/promos/{id}", handler.GetPromo)
		r.Post("/promos", handler.CreatePromo)
		r.Delete("/promos/{id}", handler.DeletePromo)
		r.Post("/promos/reload", handler.ReloadPromos)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
