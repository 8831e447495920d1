// Package aggregate fans a query out to the configured fetchers and reduces
// the results to a ranked, deduplicated source list.
package aggregate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foresight/augur/internal/fetch"
	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/internal/quality"
	"github.com/foresight/augur/pkg/utils"
)

const (
	qualityWeight   = 0.6
	relevanceWeight = 0.4
)

// Options tunes ranking and deduplication.
type Options struct {
	// MaxSources caps the ranked output length.
	MaxSources int
	// MinTitleLength drops records with shorter normalized titles.
	MinTitleLength int
	// PerFetcherLimit caps what each fetcher may contribute before ranking.
	PerFetcherLimit int
}

// Aggregator owns the fetcher set and the ranking pipeline. Fetchers may be
// swapped at runtime when configuration is reloaded.
type Aggregator struct {
	mu       sync.RWMutex
	fetchers []fetch.Fetcher
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an Aggregator over the given fetchers.
func New(fetchers []fetch.Fetcher, opts Options, logger *zap.Logger) *Aggregator {
	if opts.MaxSources <= 0 {
		opts.MaxSources = 12
	}
	if opts.MinTitleLength <= 0 {
		opts.MinTitleLength = 15
	}
	if opts.PerFetcherLimit <= 0 {
		opts.PerFetcherLimit = 20
	}
	return &Aggregator{
		fetchers: fetchers,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// SetFetchers replaces the fetcher set. Used on config reload.
func (a *Aggregator) SetFetchers(fetchers []fetch.Fetcher) {
	a.mu.Lock()
	a.fetchers = fetchers
	a.mu.Unlock()
}

// Aggregate runs the full pipeline for a query: enhancement, concurrent
// fan-out, blacklist filtering, quality annotation, deduplication, relevance
// scoring, and final ranking. It returns at most MaxSources records; zero
// survivors is not an error.
func (a *Aggregator) Aggregate(ctx context.Context, query string) ([]models.SourceRecord, error) {
	enhanced := quality.EnhanceQuery(query)
	a.logger.Debug("aggregating", zap.String("query", query), zap.String("enhanced", enhanced))

	merged := a.fanOut(ctx, enhanced)

	// Blacklist filter and quality annotation happen before dedup so that
	// precedence among duplicates reflects arrival order of kept records.
	kept := merged[:0]
	for _, rec := range merged {
		if quality.IsBlacklisted(rec.URL) || quality.IsBlacklisted(rec.SourceName) {
			continue
		}
		rec.SourceTier = quality.Tier(rec.SourceName)
		rec.ReputationBadge = quality.ReputationBadge(rec.SourceName)
		rec.QualityScore = quality.Score(rec.SourceName, rec.ProviderRelevance, utils.DaysSince(rec.PublishedAt, a.now()))
		kept = append(kept, rec)
	}

	deduped := a.dedupe(kept)

	// Relevance uses the original query, not the enhanced one.
	for i := range deduped {
		deduped[i].RelevanceScore = RelevanceScore(query, deduped[i].Title, deduped[i].Snippet)
		deduped[i].FinalScore = qualityWeight*deduped[i].QualityScore + relevanceWeight*deduped[i].RelevanceScore
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].FinalScore > deduped[j].FinalScore
	})
	if len(deduped) > a.opts.MaxSources {
		deduped = deduped[:a.opts.MaxSources]
	}

	a.logger.Info("aggregation complete",
		zap.String("query", query),
		zap.Int("merged", len(merged)),
		zap.Int("ranked", len(deduped)))
	return deduped, nil
}

// fanOut runs every fetcher concurrently and merges results in fetcher
// order. A fetcher error contributes zero records.
func (a *Aggregator) fanOut(ctx context.Context, query string) []models.SourceRecord {
	a.mu.RLock()
	fetchers := a.fetchers
	a.mu.RUnlock()

	results := make([][]models.SourceRecord, len(fetchers))
	var wg sync.WaitGroup
	for i, f := range fetchers {
		wg.Add(1)
		go func(i int, f fetch.Fetcher) {
			defer wg.Done()
			records, err := f.Fetch(ctx, query, a.opts.PerFetcherLimit)
			if err != nil {
				a.logger.Warn("fetcher failed", zap.String("provider", f.Name()), zap.Error(err))
				return
			}
			results[i] = records
		}(i, f)
	}
	wg.Wait()

	var merged []models.SourceRecord
	for _, records := range results {
		merged = append(merged, records...)
	}
	return merged
}

// dedupe drops records whose normalized title is empty, too short, already
// seen, or spam. First occurrence wins.
func (a *Aggregator) dedupe(records []models.SourceRecord) []models.SourceRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, rec := range records {
		title := strings.ToLower(strings.TrimSpace(rec.Title))
		if title == "" || len(title) < a.opts.MinTitleLength || seen[title] {
			continue
		}
		if quality.IsSpam(rec.Title) || quality.IsSpam(rec.Snippet) {
			continue
		}
		seen[title] = true
		out = append(out, rec)
	}
	return out
}
