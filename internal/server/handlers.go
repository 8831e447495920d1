package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/internal/predict"
	"github.com/foresight/augur/internal/storage"
)

// predictResponse is a PredictionResult plus persistence outcome.
type predictResponse struct {
	*models.PredictionResult
	Persisted bool  `json:"persisted"`
	QueryID   int64 `json:"query_id,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.predictor.Predict(r.Context(), req.Query)
	switch {
	case errors.Is(err, predict.ErrNoData):
		s.respondError(w, http.StatusNotFound, "no data found for query")
		return
	case errors.Is(err, predict.ErrPredictionUnavailable):
		// Degraded result: respond with what we have, skip persistence.
		s.logger.Warn("prediction degraded", zap.String("query", req.Query), zap.Error(err))
		s.respondJSON(w, http.StatusOK, predictResponse{PredictionResult: result})
		return
	case err != nil:
		s.logger.Error("predict failed", zap.String("query", req.Query), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := predictResponse{PredictionResult: result}
	receipt, err := s.storage.SavePrediction(r.Context(), req.Query, result)
	if err != nil {
		// Persistence failure never blocks the computed prediction.
		s.logger.Error("persist failed", zap.String("query", req.Query), zap.Error(err))
	} else {
		resp.Persisted = true
		resp.QueryID = receipt.QueryID
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	queries, err := s.storage.RecentQueries(r.Context(), limit)
	if err != nil {
		s.logger.Error("history failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if queries == nil {
		queries = []*models.StoredQuery{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"queries": queries})
}

func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query id")
		return
	}
	query, err := s.storage.GetQuery(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "query not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, query)
}

func (s *Server) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query id")
		return
	}
	err = s.storage.DeleteQuery(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "query not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.storage.Stats(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
