// Package news fetches company news from Finnhub, memoized by the exact
// (ticker, from, to) strings.
package news

import (
	"context"
	"time"

	"finance-dashboard/internal/finnhub"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/memo"
	"finance-dashboard/internal/store"
)

// DefaultWindowDays is how far back the news feed reaches.
const DefaultWindowDays = 30

// NoNewsMessage is shown when the window holds no articles.
const NoNewsMessage = "no company-specific news available during the specified date range"

// Fetcher is the upstream call the service memoizes.
type Fetcher interface {
	CompanyNews(ctx context.Context, symbol, from, to string) ([]finnhub.NewsItem, error)
}

// Service provides company news with caching
type Service struct {
	fetcher Fetcher
	cache   *memo.Cache[[]finnhub.NewsItem]
}

// NewService creates a news service
func NewService(fetcher Fetcher, opts ...memo.Option) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   memo.New[[]finnhub.NewsItem]("company_news", opts...),
	}
}

// FetchNews returns articles for ticker between from and to. The dates are
// cache key parts and upstream parameters as given; they are never parsed,
// so "2023-09-01" and "2023-9-1" are distinct entries.
func (s *Service) FetchNews(ctx context.Context, ticker, from, to string) ([]finnhub.NewsItem, error) {
	items, err := s.cache.GetOrFetch(ctx, memo.Key(ticker, from, to), func(ctx context.Context) ([]finnhub.NewsItem, error) {
		return s.fetcher.CompanyNews(ctx, ticker, from, to)
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		logger.Debug(ctx, "No news in window", "ticker", ticker, "from", from, "to", to)
	}
	return items, nil
}

// Window returns the YYYY-MM-DD bounds of the news feed ending at now.
// days <= 0 uses DefaultWindowDays.
func Window(now time.Time, days int) (from, to string) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	return now.AddDate(0, 0, -days).Format(store.DateLayout), now.Format(store.DateLayout)
}
