// Package integration provides end-to-end tests over the full pipeline
// (real SQLite storage, stubbed external providers).
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/foresight/augur/internal/aggregate"
	"github.com/foresight/augur/internal/config"
	"github.com/foresight/augur/internal/fetch"
	"github.com/foresight/augur/internal/llm"
	"github.com/foresight/augur/internal/predict"
	"github.com/foresight/augur/internal/server"
	"github.com/foresight/augur/internal/storage"
)

const newsPayload = `{"articles": [
	{"title": "Fed expected to hold interest rates steady", "description": "Economists see no change at the next interest rates meeting", "url": "https://reuters.com/fed1", "publishedAt": "2025-11-05T00:00:00Z", "source": {"name": "Reuters"}},
	{"title": "Interest rates outlook divides analysts sharply", "description": "Some expect a cut in interest rates, others a long hold", "url": "https://bloomberg.com/fed2", "publishedAt": "2025-11-04T00:00:00Z", "source": {"name": "Bloomberg"}},
	{"title": "Markets steady ahead of interest rates decision", "description": "Traders position cautiously before the interest rates announcement", "url": "https://cnbc.com/fed3", "publishedAt": "2025-11-03T00:00:00Z", "source": {"name": "CNBC"}}
]}`

const llmPayload = `{"message": {"content": "{\"prediction\": \"HIGHLY LIKELY - rates hold\", \"confidence_score\": 78, \"key_factors\": [\"unanimous economist survey\"], \"caveats\": [\"one inflation print pending\"]}"}}`

func TestIntegration_PredictEndToEnd(t *testing.T) {
	newsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(newsPayload))
	}))
	defer newsSrv.Close()

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(llmPayload))
	}))
	defer llmSrv.Close()

	logger := zap.NewNop()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	news := fetch.NewNewsFetcher(newsSrv.URL, "key", 5*time.Second, logger)
	aggregator := aggregate.New([]fetch.Fetcher{news}, aggregate.Options{}, logger)

	client, err := llm.NewHTTPClient(llm.ProviderOllama, llmSrv.URL, "", "test-model", 5*time.Second, logger)
	if err != nil {
		t.Fatal(err)
	}

	orchestrator := predict.New(aggregator, client, 0, logger)
	srv := server.NewServer(orchestrator, store, &config.ServerConfig{Host: "localhost", Port: 0}, logger)

	body := []byte(`{"query": "will interest rates hold"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("predict status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Prediction      string  `json:"prediction"`
		ConfidenceScore float64 `json:"confidence_score"`
		Persisted       bool    `json:"persisted"`
		QueryID         int64   `json:"query_id"`
		DataQuality     struct {
			SourceCount     int `json:"source_count"`
			ConfidenceBoost int `json:"confidence_boost"`
		} `json:"data_quality"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Prediction != "HIGHLY LIKELY - rates hold" || resp.ConfidenceScore != 78 {
		t.Errorf("prediction: %+v", resp)
	}
	if resp.DataQuality.SourceCount != 3 {
		t.Errorf("source count = %d, want 3", resp.DataQuality.SourceCount)
	}
	if resp.DataQuality.ConfidenceBoost == 0 {
		t.Error("confidence boost should be non-zero")
	}
	if !resp.Persisted || resp.QueryID == 0 {
		t.Errorf("result should be persisted: %+v", resp)
	}

	// The stored query is retrievable with its prediction and sources.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/queries/1", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get query status = %d", rec.Code)
	}
	var stored struct {
		QueryText   string `json:"query_text"`
		Predictions []struct {
			PredictionText string `json:"prediction_text"`
		} `json:"predictions"`
		Sources []struct {
			SourceName string `json:"source_name"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatal(err)
	}
	if stored.QueryText != "will interest rates hold" {
		t.Errorf("stored query: %+v", stored)
	}
	if len(stored.Predictions) != 1 || len(stored.Sources) != 3 {
		t.Errorf("stored rows: %d predictions, %d sources", len(stored.Predictions), len(stored.Sources))
	}
}

func TestIntegration_NoDataReturns404(t *testing.T) {
	newsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"articles": []}`))
	}))
	defer newsSrv.Close()

	logger := zap.NewNop()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	news := fetch.NewNewsFetcher(newsSrv.URL, "key", 5*time.Second, logger)
	aggregator := aggregate.New([]fetch.Fetcher{news}, aggregate.Options{}, logger)
	client, err := llm.NewHTTPClient(llm.ProviderOllama, "http://localhost:1", "", "m", time.Second, logger)
	if err != nil {
		t.Fatal(err)
	}
	orchestrator := predict.New(aggregator, client, 0, logger)
	srv := server.NewServer(orchestrator, store, &config.ServerConfig{}, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewReader([]byte(`{"query": "unanswerable"}`)))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] == "" {
		t.Error("error body expected")
	}
}
