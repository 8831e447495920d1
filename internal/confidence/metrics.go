// Package confidence derives objective data-quality metrics and the
// confidence boost from a ranked source list.
package confidence

import (
	"strings"

	"github.com/foresight/augur/internal/models"
)

// Compute builds the data-quality metrics for a ranked source list. The
// confidence boost is the sum of three banded components (source count,
// platform diversity, average quality), each worth up to 10 points. An empty
// list yields a zero boost.
func Compute(sources []models.SourceRecord) models.DataQualityMetrics {
	if len(sources) == 0 {
		return models.DataQualityMetrics{}
	}

	platforms := make(map[models.PlatformCategory]bool)
	var qualitySum, relevanceSum float64
	for _, src := range sources {
		platforms[platformOf(src)] = true
		qualitySum += orDefault(src.QualityScore)
		relevanceSum += src.RelevanceScore
	}

	n := float64(len(sources))
	metrics := models.DataQualityMetrics{
		SourceCount:   len(sources),
		PlatformsUsed: len(platforms),
		AvgQuality:    qualitySum / n,
		AvgRelevance:  relevanceSum / n,
	}
	metrics.ConfidenceBoost = countBoost(metrics.SourceCount) +
		platformBoost(metrics.PlatformsUsed) +
		qualityBoost(metrics.AvgQuality)
	return metrics
}

// orDefault substitutes 50 for an unset quality score. Records that skipped
// the scoring pipeline carry zero values; a genuinely scored quality is never
// 0 (the tier base alone contributes at least 20). Relevance is used raw
// since 0 is a legitimate no-overlap score.
func orDefault(score float64) float64 {
	if score == 0 {
		return 50
	}
	return score
}

func countBoost(count int) int {
	switch {
	case count >= 10:
		return 10
	case count >= 7:
		return 7
	case count >= 4:
		return 4
	default:
		return 2
	}
}

func platformBoost(platforms int) int {
	switch {
	case platforms >= 4:
		return 10
	case platforms == 3:
		return 7
	case platforms == 2:
		return 5
	default:
		return 2
	}
}

func qualityBoost(avgQuality float64) int {
	switch {
	case avgQuality >= 80:
		return 10
	case avgQuality >= 65:
		return 7
	case avgQuality >= 50:
		return 4
	default:
		return 2
	}
}

// platformOf buckets a record by inspecting its source name and URL.
func platformOf(src models.SourceRecord) models.PlatformCategory {
	name := strings.ToLower(src.SourceName)
	url := strings.ToLower(src.URL)

	switch {
	case strings.Contains(name, "yahoo finance") || strings.Contains(url, "finance.yahoo.com"):
		return models.PlatformFinancial
	case strings.Contains(name, "reuters") || strings.Contains(name, "bloomberg") ||
		strings.Contains(name, "associated press") || strings.Contains(name, "news") ||
		strings.Contains(url, "/rss") || strings.Contains(url, "feed"):
		return models.PlatformNewsWire
	case url != "" && (strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")):
		return models.PlatformWeb
	default:
		return models.PlatformOther
	}
}
