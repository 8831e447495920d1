package predict

import (
	"fmt"
	"strings"

	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/pkg/utils"
)

const (
	contextMaxSources  = 10
	contextSnippetLen  = 200
	contextMaxChars    = 8000
	contextTruncMarker = "\n[context truncated]"
)

// BuildContext renders the top sources as prompt context. At most 10 sources
// are included, snippets are cut to 200 characters, and the whole text is
// capped at 8000 characters with a truncation marker when cut.
func BuildContext(sources []models.SourceRecord) string {
	if len(sources) > contextMaxSources {
		sources = sources[:contextMaxSources]
	}

	var b strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&b, "Source %d: %s (%s, %s)\n", i+1, src.Title, src.SourceName, src.ReputationBadge)
		if src.Snippet != "" {
			fmt.Fprintf(&b, "Content: %s\n", utils.Truncate(src.Snippet, contextSnippetLen))
		}
		fmt.Fprintf(&b, "Sentiment: %s\n\n", src.Sentiment)
	}

	text := b.String()
	if len(text) > contextMaxChars {
		text = text[:contextMaxChars-len(contextTruncMarker)] + contextTruncMarker
	}
	return text
}

// BuildPrompt constructs the prediction prompt. The model is told to lead
// with a fixed stance prefix, avoid hedging, return bare JSON, and fold the
// precomputed confidence boost into its score.
func BuildPrompt(query string, sources []models.SourceRecord, confidenceBoost int) string {
	var b strings.Builder

	b.WriteString("You are a forecasting assistant. Based on the sources below, answer the question with a definitive prediction.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	b.WriteString("Sources:\n")
	b.WriteString(BuildContext(sources))
	b.WriteString("\nRules:\n")
	b.WriteString("- Begin the prediction with exactly one of: YES, NO, HIGHLY LIKELY, UNLIKELY.\n")
	b.WriteString("- Do not hedge. Avoid words like \"maybe\", \"possibly\", \"uncertain\", \"hard to say\".\n")
	b.WriteString("- Respond with a single JSON object and nothing else, with exactly these fields:\n")
	b.WriteString("  {\"prediction\": string, \"confidence_score\": number, \"key_factors\": [string], \"caveats\": [string]}\n")
	fmt.Fprintf(&b, "- Data quality analysis earned an objective confidence boost of %d points. ", confidenceBoost)
	fmt.Fprintf(&b, "Add your own subjective assessment of 0-40 points, so confidence_score should target %d + your assessment, capped at 100.\n", 40+confidenceBoost)

	return b.String()
}

// ClampConfidence forces a model-reported confidence into [0, 100].
func ClampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
