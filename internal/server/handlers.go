package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/marketlens/ashare/internal/common"
	"github.com/marketlens/ashare/internal/engine"
	"github.com/marketlens/ashare/internal/interfaces"
	"github.com/marketlens/ashare/internal/models"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Analysis
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/index", s.handleAnalyzeIndex)
	mux.HandleFunc("/api/indexes", s.handleListIndexes)
	mux.HandleFunc("/api/company/", s.handleCompany)

	// Cache
	mux.HandleFunc("/api/cache/status", s.handleCacheStatus)
	mux.HandleFunc("/api/cache/clear", s.handleCacheClear)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"version": common.GetVersion()})
}

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	Codes          []string `json:"codes"`
	Windows        []string `json:"windows,omitempty"`
	ForceRefresh   bool     `json:"force_refresh,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
}

// handleAnalyze handles POST /api/analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req analyzeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Codes) == 0 {
		WriteError(w, http.StatusBadRequest, "codes is required")
		return
	}

	opts := interfaces.AnalyzeOptions{ForceRefresh: req.ForceRefresh}
	for _, win := range req.Windows {
		opts.Windows = append(opts.Windows, models.TimeWindow(strings.ToUpper(win)))
	}
	if req.TimeoutSeconds > 0 {
		opts.Deadline = time.Now().Add(time.Duration(req.TimeoutSeconds) * time.Second)
	}

	result, err := s.analyzer.Analyze(r.Context(), req.Codes, opts)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// indexRequest is the POST /api/index body.
type indexRequest struct {
	Index            string `json:"index"`
	ConstituentLimit int    `json:"constituent_limit,omitempty"`
	ForceRefresh     bool   `json:"force_refresh,omitempty"`
	TimeoutSeconds   int    `json:"timeout_seconds,omitempty"`
}

// handleAnalyzeIndex handles POST /api/index.
func (s *Server) handleAnalyzeIndex(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req indexRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Index == "" {
		WriteError(w, http.StatusBadRequest, "index is required")
		return
	}

	opts := interfaces.IndexOptions{
		ConstituentLimit: req.ConstituentLimit,
		ForceRefresh:     req.ForceRefresh,
	}
	if req.TimeoutSeconds > 0 {
		opts.Deadline = time.Now().Add(time.Duration(req.TimeoutSeconds) * time.Second)
	}

	result, err := s.analyzer.AnalyzeIndex(r.Context(), req.Index, opts)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleListIndexes handles GET /api/indexes.
func (s *Server) handleListIndexes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, engine.SupportedIndexes())
}

// handleCompany handles GET /api/company/{code}.
func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/api/company/")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "stock code is required")
		return
	}

	info, err := s.analyzer.GetCompanyInfo(r.Context(), code)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

// handleCacheStatus handles GET /api/cache/status.
func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.analyzer.CacheStatus())
}

// handleCacheClear handles POST /api/cache/clear.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.analyzer.CacheClear()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// writeEngineError maps engine errors onto HTTP status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidIdentifier):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_identifier")
	case errors.Is(err, models.ErrBatchLimitExceeded):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "batch_limit_exceeded")
	case errors.Is(err, models.ErrUnknownIndex):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "unknown_index")
	case errors.Is(err, models.ErrNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "not_found")
	default:
		s.logger.Error().Err(err).Msg("Analysis request failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
