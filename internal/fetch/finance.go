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
	"github.com/foresight/augur/pkg/utils"
)

// FinanceFetcher queries a quote JSON endpoint for tickers extracted from the
// query. It only participates when the query contains a financial keyword.
type FinanceFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewFinanceFetcher creates a finance fetcher. baseURL is the quote endpoint
// root; the fetcher appends /quote?symbol=<ticker>.
func NewFinanceFetcher(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *FinanceFetcher {
	return &FinanceFetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  newTimeoutClient(timeout),
		logger:  logger,
	}
}

func (f *FinanceFetcher) Name() string { return "finance" }

func (f *FinanceFetcher) Category() models.PlatformCategory { return models.PlatformFinancial }

type quoteResponse struct {
	Symbol        string          `json:"symbol"`
	Price         float64         `json:"price"`
	ChangePercent float64         `json:"change_percent"`
	MarketCap     float64         `json:"market_cap"`
	News          []quoteHeadline `json:"news"`
}

type quoteHeadline struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Publisher string `json:"publisher"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// Fetch emits one quote record per extracted ticker, up to three tickers,
// followed by a sentiment-tagged record per related headline the quote
// endpoint returned. Queries without a financial keyword or recognizable
// ticker contribute nothing. Individual ticker failures are logged and
// skipped; Fetch fails only when every ticker lookup fails.
func (f *FinanceFetcher) Fetch(ctx context.Context, query string, limit int) ([]models.SourceRecord, error) {
	if !HasFinancialKeyword(query) {
		return nil, nil
	}
	tickers := ExtractTickers(query)
	if len(tickers) == 0 {
		return nil, nil
	}
	if len(tickers) > 3 {
		tickers = tickers[:3]
	}

	var records []models.SourceRecord
	var lastErr error
	for _, ticker := range tickers {
		quote, err := f.fetchQuote(ctx, ticker)
		if err != nil {
			f.logger.Warn("quote lookup failed", zap.String("ticker", ticker), zap.Error(err))
			lastErr = err
			continue
		}
		snippet := fmt.Sprintf("Current: $%.2f, Day Change: %.2f%%, Market Cap: $%.0f",
			quote.Price, quote.ChangePercent, quote.MarketCap)
		rec := models.NewSourceRecord(
			fmt.Sprintf("%s Stock Information", ticker),
			snippet,
			"Yahoo Finance",
			fmt.Sprintf("https://finance.yahoo.com/quote/%s", ticker),
		)
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}

		for _, article := range quote.News {
			if article.Title == "" {
				continue
			}
			publisher := article.Publisher
			if publisher == "" {
				publisher = "Yahoo Finance"
			}
			news := models.NewSourceRecord(article.Title, utils.Truncate(article.Summary, 300), publisher, article.Link)
			news.Sentiment = sentiment.Classify(article.Title + " " + article.Summary)
			news.PublishedAt = article.Published
			records = append(records, news)
			if limit > 0 && len(records) >= limit {
				break
			}
		}
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	if len(records) == 0 && lastErr != nil {
		return nil, &FetchError{Provider: f.Name(), Err: lastErr}
	}
	f.logger.Debug("finance results", zap.String("query", query), zap.Int("count", len(records)))
	return records, nil
}

func (f *FinanceFetcher) fetchQuote(ctx context.Context, ticker string) (*quoteResponse, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if f.apiKey != "" {
		req.Header.Set("X-Api-Key", f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return &quote, nil
}
