// Package fundamentals fetches company profiles and quarterly earnings from
// Finnhub, memoized by ticker.
package fundamentals

import (
	"context"

	"finance-dashboard/internal/finnhub"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/memo"
)

// Service wraps a Finnhub client with per-ticker memoization.
type Service struct {
	api      finnhub.API
	profiles *memo.Cache[*finnhub.CompanyProfile]
	earnings *memo.Cache[[]finnhub.RawRecord]
}

// NewService creates a fundamentals service. opts configure both caches.
func NewService(api finnhub.API, opts ...memo.Option) *Service {
	return &Service{
		api:      api,
		profiles: memo.New[*finnhub.CompanyProfile]("company_profile", opts...),
		earnings: memo.New[[]finnhub.RawRecord]("company_earnings", opts...),
	}
}

// FetchCompanyProfile returns the company profile for ticker, or nil when the
// upstream has none. Upstream rejections come back as *finnhub.APIError.
func (s *Service) FetchCompanyProfile(ctx context.Context, ticker string) (*finnhub.CompanyProfile, error) {
	profile, err := s.profiles.GetOrFetch(ctx, memo.Key(ticker), func(ctx context.Context) (*finnhub.CompanyProfile, error) {
		return s.api.CompanyProfile2(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	if profile.IsEmpty() {
		logger.Debug(ctx, "No company profile", "ticker", ticker)
		return nil, nil
	}
	return profile, nil
}

// FetchEarnings returns the ticker's earnings projected to EarningsColumns in
// upstream order. The raw payload is memoized; a record missing a column
// fails with *MissingFieldError.
func (s *Service) FetchEarnings(ctx context.Context, ticker string) ([]EarningsRecord, error) {
	raw, err := s.earnings.GetOrFetch(ctx, memo.Key(ticker), func(ctx context.Context) ([]finnhub.RawRecord, error) {
		return s.api.CompanyEarnings(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return Project(raw)
}
