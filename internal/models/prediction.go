package models

import (
	"fmt"
	"time"
)

// PredictionResult is the final answer object assembled per request.
type PredictionResult struct {
	Prediction      string             `json:"prediction"`
	ConfidenceScore float64            `json:"confidence_score"`
	KeyFactors      []string           `json:"key_factors"`
	Caveats         []string           `json:"caveats"`
	DataQuality     DataQualityMetrics `json:"data_quality"`
	Sources         []SourceRecord     `json:"sources"`
	ModelUsed       string             `json:"model_used,omitempty"`
}

// PredictRequest is the body of a predict API call.
type PredictRequest struct {
	Query string `json:"query"`
}

// Validate ensures the request has a non-empty query.
func (r *PredictRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

// StoredQuery is a persisted query row with its predictions.
type StoredQuery struct {
	ID          int64              `json:"id"`
	QueryText   string             `json:"query_text"`
	CreatedAt   time.Time          `json:"created_at"`
	Predictions []StoredPrediction `json:"predictions,omitempty"`
	Sources     []StoredSource     `json:"sources,omitempty"`
}

// StoredPrediction is a persisted prediction row.
type StoredPrediction struct {
	ID              int64     `json:"id"`
	QueryID         int64     `json:"query_id"`
	PredictionText  string    `json:"prediction_text"`
	ConfidenceScore float64   `json:"confidence_score"`
	KeyFactors      []string  `json:"key_factors"`
	Caveats         []string  `json:"caveats"`
	ModelUsed       string    `json:"model_used"`
	CreatedAt       time.Time `json:"created_at"`
}

// StoredSource is a persisted source row.
type StoredSource struct {
	ID          int64     `json:"id"`
	QueryID     int64     `json:"query_id"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	URL         string    `json:"url"`
	SourceName  string    `json:"source_name"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// StoreStats summarizes the persisted history.
type StoreStats struct {
	Queries       int64   `json:"queries"`
	Predictions   int64   `json:"predictions"`
	Sources       int64   `json:"sources"`
	AvgConfidence float64 `json:"avg_confidence"`
}
