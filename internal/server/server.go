// Package server provides the HTTP API for Augur.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/foresight/augur/internal/config"
	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/internal/storage"
)

// Predictor runs the prediction pipeline for a query.
type Predictor interface {
	Predict(ctx context.Context, query string) (*models.PredictionResult, error)
}

// Server is the HTTP server for the Augur API.
type Server struct {
	predictor Predictor
	storage   storage.Storage
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	predictor Predictor,
	store storage.Storage,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		predictor: predictor,
		storage:   store,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/predict", s.handlePredict)
	r.Get("/api/v1/history", s.handleHistory)
	r.Get("/api/v1/queries/{id}", s.handleGetQuery)
	r.Delete("/api/v1/queries/{id}", s.handleDeleteQuery)
	r.Get("/api/v1/stats", s.handleStats)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
