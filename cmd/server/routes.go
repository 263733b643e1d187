package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/config"
	"github.com/ericksa/legalyze/internal/middleware"
	"github.com/ericksa/legalyze/internal/workers"
	"github.com/ericksa/legalyze/pkg/mcp"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
	// maxBodyBytes leaves room for JSON escaping of a maximum-size document.
	maxBodyBytes = 32 << 20
)

type server struct {
	handler   *mcp.Handler
	configAPI *config.ConfigAPI
	logger    *zap.Logger

	mu     sync.RWMutex
	worker *workers.AnalysisWorker
}

func (s *server) analysisWorker() *workers.AnalysisWorker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.worker
}

// applyConfig swaps in a worker built from a reloaded config. The listen
// address, timeouts, logging and audit settings take effect on restart.
func (s *server) applyConfig(cfg *config.Config) error {
	worker, err := newAnalysisWorker(cfg, s.logger)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.handler.SetWorker("analysis", worker); err != nil {
		return err
	}
	s.worker = worker
	s.logger.Info("analysis worker reloaded",
		zap.String("provider", cfg.LLM.Provider),
		zap.Bool("mock_mode", worker.MockMode()),
	)
	return nil
}

func (s *server) router(corsOrigins []string) http.Handler {
	r := mux.NewRouter()
	middleware.Register(r, s.logger)

	api := r.PathPrefix("/api").Subrouter()
	for _, op := range []analysis.Endpoint{
		analysis.EndpointSimplify,
		analysis.EndpointRedFlags,
		analysis.EndpointQA,
		analysis.EndpointImprove,
		analysis.EndpointSuggestions,
	} {
		api.HandleFunc("/"+string(op), s.operationHandler(op)).Methods(http.MethodPost)
	}
	api.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/audit", s.auditHandler).Methods(http.MethodGet)

	if s.configAPI != nil {
		s.configAPI.Register(r)
	}

	return middleware.CORS(corsOrigins)(r)
}

// operationHandler runs one analysis tool. Input problems answer 400 with
// the worker's message; anything else answers 500 with a generic message.
func (s *server) operationHandler(op analysis.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "Could not read request body")
			return
		}

		result, err := s.handler.ExecuteTool(r.Context(), "analysis_"+string(op), body)
		if err != nil {
			var badReq *workers.BadRequestError
			if errors.As(err, &badReq) {
				writeError(w, http.StatusBadRequest, badReq.Message)
				return
			}
			s.logger.Error("operation failed",
				zap.String("op", string(op)),
				zap.String("request_id", middleware.RequestIDFrom(r.Context())),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, workers.FailureMessage(op))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result)
	}
}

func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analysis.HealthResponse{
		Status:          "healthy",
		ModelConfigured: !s.analysisWorker().MockMode(),
		Version:         mcp.Version,
	})
}

func (s *server) auditHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	entries, err := s.handler.Logs(limit)
	if err != nil {
		s.logger.Error("audit query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to read audit log")
		return
	}
	if entries == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
