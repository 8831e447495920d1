// Package models defines core data structures for source records, quality
// metrics, and prediction results.
package models

// Sentiment is the polarity classification of a piece of text.
type Sentiment string

const (
	// SentimentPositive indicates clearly positive language.
	SentimentPositive Sentiment = "positive"
	// SentimentNegative indicates clearly negative language.
	SentimentNegative Sentiment = "negative"
	// SentimentNeutral indicates neutral or mixed language.
	SentimentNeutral Sentiment = "neutral"
)

// PlatformCategory is the provider category a source record came from.
type PlatformCategory string

const (
	// PlatformFinancial is financial/market data providers.
	PlatformFinancial PlatformCategory = "financial-data"
	// PlatformNewsWire is news outlets and wire services.
	PlatformNewsWire PlatformCategory = "news-wire"
	// PlatformWeb is generic web search results.
	PlatformWeb PlatformCategory = "generic-web"
	// PlatformOther is anything not classified above.
	PlatformOther PlatformCategory = "other"
)

// SourceRecord is one retrieved snippet, created by a fetcher and enriched by
// the quality rater and relevance computation before ranking.
type SourceRecord struct {
	Title           string    `json:"title"`
	Snippet         string    `json:"snippet,omitempty"`
	SourceName      string    `json:"source_name"`
	URL             string    `json:"url,omitempty"`
	Sentiment       Sentiment `json:"sentiment"`
	PublishedAt     string    `json:"published_at,omitempty"`
	SourceTier      int       `json:"source_tier"`
	ReputationBadge string    `json:"reputation_badge"`
	QualityScore    float64   `json:"quality_score"`
	RelevanceScore  float64   `json:"relevance_score"`
	FinalScore      float64   `json:"final_score"`

	// ProviderRelevance is the provider-reported relevance on a 0-10 scale,
	// consumed by the quality score and not serialized.
	ProviderRelevance float64 `json:"-"`
}

// NewSourceRecord creates a record with defaults filled: unknown tier and
// badge, neutral sentiment, zero scores.
func NewSourceRecord(title, snippet, sourceName, url string) SourceRecord {
	return SourceRecord{
		Title:           title,
		Snippet:         snippet,
		SourceName:      sourceName,
		URL:             url,
		Sentiment:       SentimentNeutral,
		SourceTier:      4,
		ReputationBadge: "❓ Unknown Source",
	}
}

// DataQualityMetrics aggregates quality statistics over a ranked source list.
// It is recomputed on every request and never persisted independently.
type DataQualityMetrics struct {
	SourceCount     int     `json:"source_count"`
	PlatformsUsed   int     `json:"platforms_used"`
	AvgQuality      float64 `json:"avg_quality"`
	AvgRelevance    float64 `json:"avg_relevance"`
	ConfidenceBoost int     `json:"confidence_boost"`
}
