// Package cli provides CLI output utilities for Augur.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WritePrediction writes a prediction result to w in the given format.
func WritePrediction(w io.Writer, result *models.PredictionResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writePredictionText(w, result)
		return nil
	}
}

func writePredictionText(w io.Writer, result *models.PredictionResult) {
	fmt.Fprintf(w, "\nPrediction: %s\n", result.Prediction)
	fmt.Fprintf(w, "Confidence: %.0f/100\n", result.ConfidenceScore)
	if result.ModelUsed != "" {
		fmt.Fprintf(w, "Model: %s\n", result.ModelUsed)
	}

	if len(result.KeyFactors) > 0 {
		fmt.Fprintln(w, "\nKey factors:")
		for _, f := range result.KeyFactors {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(result.Caveats) > 0 {
		fmt.Fprintln(w, "\nCaveats:")
		for _, c := range result.Caveats {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}

	dq := result.DataQuality
	fmt.Fprintf(w, "\nData quality: %d sources across %d platforms (avg quality %.0f, boost +%d)\n",
		dq.SourceCount, dq.PlatformsUsed, dq.AvgQuality, dq.ConfidenceBoost)

	if len(result.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, src := range result.Sources {
			fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
			fmt.Fprintf(w, "%d. %s %s (score %.1f)\n", i+1, src.ReputationBadge, src.SourceName, src.FinalScore)
			fmt.Fprintf(w, "   %s\n", src.Title)
			if src.Snippet != "" {
				fmt.Fprintf(w, "   %s\n", utils.Truncate(src.Snippet, 200))
			}
			if src.URL != "" {
				fmt.Fprintf(w, "   %s\n", src.URL)
			}
		}
	}
	fmt.Fprintln(w)
}

// WriteHistory writes stored queries to w in the given format.
func WriteHistory(w io.Writer, queries []*models.StoredQuery, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(queries)
	default:
		if len(queries) == 0 {
			fmt.Fprintln(w, "No stored queries.")
			return nil
		}
		for _, q := range queries {
			fmt.Fprintf(w, "[%d] %s (%s)\n", q.ID, q.QueryText, q.CreatedAt.Format("2006-01-02 15:04"))
			for _, p := range q.Predictions {
				fmt.Fprintf(w, "    %s (confidence %.0f)\n", utils.Truncate(p.PredictionText, 120), p.ConfidenceScore)
			}
		}
		return nil
	}
}
