package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/foresight/augur/internal/config"
	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/internal/predict"
	"github.com/foresight/augur/internal/storage"
)

type stubPredictor struct {
	result *models.PredictionResult
	err    error
}

func (s *stubPredictor) Predict(_ context.Context, _ string) (*models.PredictionResult, error) {
	return s.result, s.err
}

type stubStorage struct {
	saved      bool
	saveErr    error
	queries    map[int64]*models.StoredQuery
	deleteErr  error
	statsValue *models.StoreStats
}

func (s *stubStorage) SavePrediction(_ context.Context, _ string, _ *models.PredictionResult) (*storage.SaveReceipt, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.saved = true
	return &storage.SaveReceipt{QueryID: 1, PredictionID: 1, SourceIDs: []int64{1}}, nil
}

func (s *stubStorage) RecentQueries(_ context.Context, _ int) ([]*models.StoredQuery, error) {
	var out []*models.StoredQuery
	for _, q := range s.queries {
		out = append(out, q)
	}
	return out, nil
}

func (s *stubStorage) GetQuery(_ context.Context, id int64) (*models.StoredQuery, error) {
	q, ok := s.queries[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return q, nil
}

func (s *stubStorage) DeleteQuery(_ context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.queries[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.queries, id)
	return nil
}

func (s *stubStorage) Stats(_ context.Context) (*models.StoreStats, error) {
	if s.statsValue != nil {
		return s.statsValue, nil
	}
	return &models.StoreStats{}, nil
}

func (s *stubStorage) Close() error { return nil }

func newTestServer(p Predictor, st storage.Storage) *Server {
	return NewServer(p, st, &config.ServerConfig{Host: "localhost", Port: 0}, zap.NewNop())
}

func goodResult() *models.PredictionResult {
	return &models.PredictionResult{
		Prediction:      "YES - it will happen",
		ConfidenceScore: 75,
		KeyFactors:      []string{"factor"},
		Caveats:         []string{},
		DataQuality:     models.DataQualityMetrics{SourceCount: 5, ConfidenceBoost: 13},
		Sources:         []models.SourceRecord{models.NewSourceRecord("A long enough headline here", "", "Reuters", "https://r.com/a")},
	}
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandlePredict_success(t *testing.T) {
	st := &stubStorage{}
	s := newTestServer(&stubPredictor{result: goodResult()}, st)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", []byte(`{"query": "will it happen"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Prediction      string  `json:"prediction"`
		ConfidenceScore float64 `json:"confidence_score"`
		Persisted       bool    `json:"persisted"`
		QueryID         int64   `json:"query_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Prediction != "YES - it will happen" || resp.ConfidenceScore != 75 {
		t.Errorf("response: %+v", resp)
	}
	if !resp.Persisted || resp.QueryID != 1 {
		t.Errorf("persisted flag: %+v", resp)
	}
	if !st.saved {
		t.Error("result should have been persisted")
	}
}

func TestHandlePredict_emptyQuery(t *testing.T) {
	s := newTestServer(&stubPredictor{}, &stubStorage{})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", []byte(`{"query": ""}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] == "" {
		t.Error("error body expected")
	}
}

func TestHandlePredict_noData(t *testing.T) {
	s := newTestServer(&stubPredictor{err: predict.ErrNoData}, &stubStorage{})
	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", []byte(`{"query": "obscure thing"}`))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlePredict_degradedStillResponds(t *testing.T) {
	degraded := &models.PredictionResult{
		Prediction:      "Unable to generate prediction: the language model could not be reached",
		ConfidenceScore: 0,
		KeyFactors:      []string{},
		Caveats:         []string{"model call failed: connection refused"},
	}
	st := &stubStorage{}
	s := newTestServer(&stubPredictor{result: degraded, err: predict.ErrPredictionUnavailable}, st)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", []byte(`{"query": "will it happen"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for degraded result", rec.Code)
	}
	var resp struct {
		ConfidenceScore float64 `json:"confidence_score"`
		Persisted       bool    `json:"persisted"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ConfidenceScore != 0 {
		t.Errorf("degraded confidence = %v, want 0", resp.ConfidenceScore)
	}
	if resp.Persisted {
		t.Error("degraded result must not be persisted")
	}
	if st.saved {
		t.Error("storage should not have been called")
	}
}

func TestHandlePredict_persistFailureStillResponds(t *testing.T) {
	st := &stubStorage{saveErr: context.DeadlineExceeded}
	s := newTestServer(&stubPredictor{result: goodResult()}, st)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", []byte(`{"query": "will it happen"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite persist failure", rec.Code)
	}
	var resp struct {
		Persisted bool `json:"persisted"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Persisted {
		t.Error("persisted should be false when save fails")
	}
}

func TestHandleGetQuery(t *testing.T) {
	st := &stubStorage{queries: map[int64]*models.StoredQuery{
		7: {ID: 7, QueryText: "stored question"},
	}}
	s := newTestServer(&stubPredictor{}, st)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/queries/7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var q models.StoredQuery
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatal(err)
	}
	if q.ID != 7 || q.QueryText != "stored question" {
		t.Errorf("query: %+v", q)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/queries/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing query status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/queries/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestHandleDeleteQuery(t *testing.T) {
	st := &stubStorage{queries: map[int64]*models.StoredQuery{
		3: {ID: 3, QueryText: "delete me"},
	}}
	s := newTestServer(&stubPredictor{}, st)

	rec := doRequest(t, s, http.MethodDelete, "/api/v1/queries/3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodDelete, "/api/v1/queries/3", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandleHistoryAndStats(t *testing.T) {
	st := &stubStorage{
		queries:    map[int64]*models.StoredQuery{1: {ID: 1, QueryText: "q"}},
		statsValue: &models.StoreStats{Queries: 1, Predictions: 1, Sources: 2, AvgConfidence: 70},
	}
	s := newTestServer(&stubPredictor{}, st)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/history?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var hist struct {
		Queries []models.StoredQuery `json:"queries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatal(err)
	}
	if len(hist.Queries) != 1 {
		t.Errorf("history queries: %d, want 1", len(hist.Queries))
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats models.StoreStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.AvgConfidence != 70 {
		t.Errorf("stats: %+v", stats)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&stubPredictor{}, &stubStorage{})
	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}
