// Package server exposes the analysis engine over a thin JSON REST API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/marketlens/ashare/internal/common"
	"github.com/marketlens/ashare/internal/interfaces"
)

// Server wraps the HTTP server and the engine it fronts.
type Server struct {
	analyzer interfaces.AnalyzerService
	server   *http.Server
	logger   *common.Logger
}

// NewServer creates the REST API server.
func NewServer(analyzer interfaces.AnalyzerService, config *common.Config, logger *common.Logger) *Server {
	s := &Server{
		analyzer: analyzer,
		logger:   logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, logger)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
