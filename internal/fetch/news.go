package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/internal/sentiment"
	"github.com/foresight/augur/pkg/utils"
)

// NewsFetcher queries a NewsAPI-compatible /everything endpoint for articles
// from the last 30 days.
type NewsFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

// NewNewsFetcher creates a news fetcher. baseURL is the API root
// (e.g. https://newsapi.org/v2).
func NewNewsFetcher(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *NewsFetcher {
	return &NewsFetcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  newTimeoutClient(timeout),
		logger:  logger,
		now:     time.Now,
	}
}

func (f *NewsFetcher) Name() string { return "news" }

func (f *NewsFetcher) Category() models.PlatformCategory { return models.PlatformNewsWire }

type newsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch returns up to limit articles sorted by word-overlap relevance with
// the query. Articles missing a title or description are dropped; articles
// with zero overlap are kept only while fewer than two results exist.
func (f *NewsFetcher) Fetch(ctx context.Context, query string, limit int) ([]models.SourceRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("from", f.now().AddDate(0, 0, -30).Format("2006-01-02"))
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", "20")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Provider: f.Name(), Err: err}
	}
	req.Header.Set("X-Api-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: f.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Provider: f.Name(), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var parsed newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &FetchError{Provider: f.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	queryWords := utils.Words(query)

	type scored struct {
		rec       models.SourceRecord
		relevance int
	}
	var results []scored
	for _, article := range parsed.Articles {
		if article.Title == "" || article.Description == "" {
			continue
		}

		titleLower := strings.ToLower(article.Title)
		descLower := strings.ToLower(article.Description)
		relevance := 0
		for _, w := range queryWords {
			if strings.Contains(titleLower, w) || strings.Contains(descLower, w) {
				relevance++
			}
		}
		if relevance == 0 && len(results) >= 2 {
			continue
		}

		sourceName := article.Source.Name
		if sourceName == "" {
			sourceName = "Unknown"
		}
		rec := models.NewSourceRecord(article.Title, utils.Truncate(article.Description, 200), sourceName, article.URL)
		rec.Sentiment = sentiment.Classify(article.Title + " " + article.Description)
		rec.PublishedAt = article.PublishedAt
		rec.ProviderRelevance = float64(relevance)
		if rec.ProviderRelevance > 10 {
			rec.ProviderRelevance = 10
		}
		results = append(results, scored{rec: rec, relevance: relevance})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].relevance > results[j].relevance
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	records := make([]models.SourceRecord, len(results))
	for i, s := range results {
		records[i] = s.rec
	}

	f.logger.Debug("news results", zap.String("query", query), zap.Int("count", len(records)))
	return records, nil
}
