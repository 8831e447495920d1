// Package predict orchestrates the aggregate → score → generate pipeline that
// turns a query into a structured prediction.
package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foresight/augur/internal/confidence"
	"github.com/foresight/augur/internal/llm"
	"github.com/foresight/augur/internal/models"
)

// ErrNoData means aggregation yielded zero usable sources; there is nothing
// to predict from. Usually overly strict filtering or missing provider
// credentials.
var ErrNoData = errors.New("no data found for query")

// ErrPredictionUnavailable means the model call failed; the returned result
// is a degraded placeholder.
var ErrPredictionUnavailable = errors.New("prediction unavailable")

// SourceProvider supplies ranked sources for a query.
type SourceProvider interface {
	Aggregate(ctx context.Context, query string) ([]models.SourceRecord, error)
}

// Orchestrator runs the prediction pipeline.
type Orchestrator struct {
	sources   SourceProvider
	client    llm.Client
	maxTokens int
	logger    *zap.Logger
}

// New creates an Orchestrator. maxTokens caps the model completion length;
// zero or negative falls back to the default.
func New(sources SourceProvider, client llm.Client, maxTokens int, logger *zap.Logger) *Orchestrator {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Orchestrator{
		sources:   sources,
		client:    client,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

const defaultMaxTokens = 1024

// Predict runs the full pipeline for a query.
//
// Returns ErrNoData with a nil result when aggregation yields nothing. A
// model transport failure returns ErrPredictionUnavailable together with a
// degraded result (confidence 0) so callers can still respond. Unparseable
// model output is not an error: the raw text is wrapped with confidence 50.
func (o *Orchestrator) Predict(ctx context.Context, query string) (*models.PredictionResult, error) {
	// One trace id per pipeline run so aggregate, model, and persist log
	// lines correlate.
	logger := o.logger.With(zap.String("trace_id", uuid.NewString()))

	sources, err := o.sources.Aggregate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if len(sources) == 0 {
		return nil, ErrNoData
	}

	metrics := confidence.Compute(sources)
	prompt := BuildPrompt(query, sources, metrics.ConfidenceBoost)

	raw, err := o.client.Complete(ctx, prompt, o.maxTokens)
	if err != nil {
		logger.Error("model call failed", zap.String("query", query), zap.Error(err))
		degraded := &models.PredictionResult{
			Prediction:      "Unable to generate prediction: the language model could not be reached",
			ConfidenceScore: 0,
			KeyFactors:      []string{},
			Caveats:         []string{fmt.Sprintf("model call failed: %v", err)},
			DataQuality:     metrics,
			Sources:         sources,
			ModelUsed:       o.client.Model(),
		}
		return degraded, ErrPredictionUnavailable
	}

	parsed := llm.ParseResponse(raw)
	if parsed.Fallback {
		logger.Warn("model response fell back to raw text", zap.String("query", query))
	}

	return &models.PredictionResult{
		Prediction:      parsed.Prediction,
		ConfidenceScore: ClampConfidence(parsed.ConfidenceScore),
		KeyFactors:      parsed.KeyFactors,
		Caveats:         parsed.Caveats,
		DataQuality:     metrics,
		Sources:         sources,
		ModelUsed:       o.client.Model(),
	}, nil
}
