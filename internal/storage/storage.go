// Package storage defines the persistence interface for queries, predictions,
// and their sources.
package storage

import (
	"context"
	"errors"

	"github.com/foresight/augur/internal/models"
)

// ErrNotFound is returned when a requested query does not exist.
var ErrNotFound = errors.New("not found")

// SaveReceipt identifies the rows written by SavePrediction.
type SaveReceipt struct {
	QueryID      int64   `json:"query_id"`
	PredictionID int64   `json:"prediction_id"`
	SourceIDs    []int64 `json:"source_ids"`
}

// Storage defines prediction history persistence operations.
type Storage interface {
	// SavePrediction writes the query, its prediction, and all sources in
	// one transaction.
	SavePrediction(ctx context.Context, queryText string, result *models.PredictionResult) (*SaveReceipt, error)

	// RecentQueries lists queries newest-first with their predictions.
	RecentQueries(ctx context.Context, limit int) ([]*models.StoredQuery, error)

	// GetQuery returns one query with its predictions and sources.
	GetQuery(ctx context.Context, id int64) (*models.StoredQuery, error)

	// DeleteQuery removes a query and, via cascade, its predictions and
	// sources.
	DeleteQuery(ctx context.Context, id int64) error

	// Stats summarizes the stored history.
	Stats(ctx context.Context) (*models.StoreStats, error)

	Close() error
}
