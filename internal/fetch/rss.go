package fetch

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/internal/sentiment"
	"github.com/foresight/augur/pkg/utils"
)

// RSSFetcher pulls items from a configured set of feed URLs.
type RSSFetcher struct {
	feeds  []string
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewRSSFetcher creates an RSS fetcher over the given feed URLs.
func NewRSSFetcher(feeds []string, timeout time.Duration, logger *zap.Logger) *RSSFetcher {
	parser := gofeed.NewParser()
	parser.Client = newTimeoutClient(timeout)
	return &RSSFetcher{
		feeds:  feeds,
		parser: parser,
		logger: logger,
	}
}

func (f *RSSFetcher) Name() string { return "rss" }

func (f *RSSFetcher) Category() models.PlatformCategory { return models.PlatformNewsWire }

// Fetch parses every configured feed and keeps items whose title or
// description shares a word with the query. Per-feed failures are logged and
// skipped; Fetch fails only when every feed fails.
func (f *RSSFetcher) Fetch(ctx context.Context, query string, limit int) ([]models.SourceRecord, error) {
	queryWords := utils.WordSet(query)

	var records []models.SourceRecord
	var lastErr error
	failures := 0
	for _, feedURL := range f.feeds {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			f.logger.Warn("feed parse failed", zap.String("feed", feedURL), zap.Error(err))
			lastErr = err
			failures++
			continue
		}

		sourceName := feed.Title
		if sourceName == "" {
			sourceName = feedURL
		}
		for _, item := range feed.Items {
			if !matchesQuery(queryWords, item.Title+" "+item.Description) {
				continue
			}
			rec := models.NewSourceRecord(item.Title, utils.Truncate(item.Description, 200), sourceName, item.Link)
			rec.Sentiment = sentiment.Classify(item.Title + " " + item.Description)
			if item.PublishedParsed != nil {
				rec.PublishedAt = item.PublishedParsed.Format(time.RFC3339)
			}
			records = append(records, rec)
			if limit > 0 && len(records) >= limit {
				break
			}
		}
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	if len(records) == 0 && failures == len(f.feeds) && lastErr != nil {
		return nil, &FetchError{Provider: f.Name(), Err: lastErr}
	}
	f.logger.Debug("rss results", zap.String("query", query), zap.Int("count", len(records)))
	return records, nil
}

// matchesQuery reports whether text shares at least one word with the query.
func matchesQuery(queryWords map[string]bool, text string) bool {
	for _, w := range utils.Words(text) {
		if queryWords[w] {
			return true
		}
	}
	return false
}
