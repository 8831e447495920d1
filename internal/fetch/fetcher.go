// Package fetch retrieves candidate sources from external data providers:
// web search, news, financial data, and RSS feeds.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/foresight/augur/internal/models"
)

// Fetcher retrieves source records for a query from one provider.
type Fetcher interface {
	// Name identifies the provider in logs and fetch errors.
	Name() string
	// Category buckets the provider for data-quality platform counting.
	Category() models.PlatformCategory
	// Fetch returns up to limit records for query. A failed fetch returns
	// a *FetchError; callers treat that as zero contributed records.
	Fetch(ctx context.Context, query string, limit int) ([]models.SourceRecord, error)
}

// FetchError wraps a provider failure with the provider's name.
type FetchError struct {
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// newTimeoutClient returns an HTTP client with the per-fetcher timeout.
func newTimeoutClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

var financialKeywords = []string{
	"stock", "price", "market", "trading", "$", "shares", "invest",
	"bitcoin", "crypto",
}

// HasFinancialKeyword reports whether the query mentions a financial term.
// Gates the finance and RSS fetchers.
func HasFinancialKeyword(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range financialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// commonTickers maps company and asset names to their ticker symbols.
var commonTickers = []struct {
	keyword string
	ticker  string
}{
	{"bitcoin", "BTC-USD"},
	{"btc", "BTC-USD"},
	{"ethereum", "ETH-USD"},
	{"eth", "ETH-USD"},
	{"tesla", "TSLA"},
	{"apple", "AAPL"},
	{"google", "GOOGL"},
	{"microsoft", "MSFT"},
	{"amazon", "AMZN"},
	{"meta", "META"},
	{"nvidia", "NVDA"},
	{"spy", "SPY"},
	{"s&p", "SPY"},
	{"dow", "DIA"},
	{"nasdaq", "QQQ"},
}

var tickerPattern = regexp.MustCompile(`\b([A-Z]{1,5})\b`)

// ExtractTickers finds candidate ticker symbols in a query: well-known
// company/asset names first, then explicit uppercase symbols. Duplicates are
// removed preserving order.
func ExtractTickers(query string) []string {
	lower := strings.ToLower(query)

	var tickers []string
	for _, entry := range commonTickers {
		if strings.Contains(lower, entry.keyword) {
			tickers = append(tickers, entry.ticker)
		}
	}
	tickers = append(tickers, tickerPattern.FindAllString(query, -1)...)

	seen := make(map[string]bool, len(tickers))
	unique := tickers[:0]
	for _, t := range tickers {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	return unique
}
