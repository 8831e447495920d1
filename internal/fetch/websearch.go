package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/foresight/augur/internal/models"
	"github.com/foresight/augur/internal/sentiment"
)

// WebSearchFetcher queries a Custom-Search-style JSON API.
type WebSearchFetcher struct {
	baseURL  string
	apiKey   string
	engineID string
	client   *http.Client
	logger   *zap.Logger
}

// NewWebSearchFetcher creates a web search fetcher. baseURL should point at
// the search endpoint (e.g. https://www.googleapis.com/customsearch/v1).
func NewWebSearchFetcher(baseURL, apiKey, engineID string, timeout time.Duration, logger *zap.Logger) *WebSearchFetcher {
	return &WebSearchFetcher{
		baseURL:  baseURL,
		apiKey:   apiKey,
		engineID: engineID,
		client:   newTimeoutClient(timeout),
		logger:   logger,
	}
}

func (f *WebSearchFetcher) Name() string { return "web-search" }

func (f *WebSearchFetcher) Category() models.PlatformCategory { return models.PlatformWeb }

type webSearchResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
		Link        string `json:"link"`
	} `json:"items"`
}

// Fetch returns up to limit search results. The API caps results at 10 per
// request, so larger limits are clamped.
func (f *WebSearchFetcher) Fetch(ctx context.Context, query string, limit int) ([]models.SourceRecord, error) {
	if limit > 10 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", f.apiKey)
	params.Set("cx", f.engineID)
	params.Set("num", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Provider: f.Name(), Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: f.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Provider: f.Name(), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var parsed webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &FetchError{Provider: f.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	records := make([]models.SourceRecord, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		sourceName := item.DisplayLink
		if sourceName == "" {
			sourceName = "Web Search"
		}
		rec := models.NewSourceRecord(item.Title, item.Snippet, sourceName, item.Link)
		rec.Sentiment = sentiment.Classify(item.Title + " " + item.Snippet)
		records = append(records, rec)
		if len(records) >= limit {
			break
		}
	}

	f.logger.Debug("web search results", zap.String("query", query), zap.Int("count", len(records)))
	return records, nil
}
