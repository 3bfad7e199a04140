package finnhubobs

import (
	"context"

	"finance-dashboard/internal/finnhub"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/trace"
)

// observableAPI wraps a Finnhub API with logging and tracing
type observableAPI struct {
	api finnhub.API
}

var _ finnhub.API = (*observableAPI)(nil)

// Wrap wraps a Finnhub client with observability middleware
func Wrap(api finnhub.API) finnhub.API {
	return &observableAPI{api: api}
}

// CompanyProfile2 fetches a company profile with observability
func (o *observableAPI) CompanyProfile2(ctx context.Context, symbol string) (*finnhub.CompanyProfile, error) {
	ctx, span := trace.StartSpan(ctx, "finnhub.CompanyProfile2")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching company profile", "symbol", symbol)

	profile, err := o.api.CompanyProfile2(ctx, symbol)
	if err != nil {
		trace.RecordError(span, err)
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch company profile", err, "symbol", symbol)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Company profile fetched", "symbol", symbol, "empty", profile.IsEmpty())
	return profile, nil
}

// CompanyEarnings fetches earnings records with observability
func (o *observableAPI) CompanyEarnings(ctx context.Context, symbol string) ([]finnhub.RawRecord, error) {
	ctx, span := trace.StartSpan(ctx, "finnhub.CompanyEarnings")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching earnings", "symbol", symbol)

	records, err := o.api.CompanyEarnings(ctx, symbol)
	if err != nil {
		trace.RecordError(span, err)
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch earnings", err, "symbol", symbol)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Earnings fetched", "symbol", symbol, "count", len(records))
	return records, nil
}

// CompanyNews fetches company news with observability
func (o *observableAPI) CompanyNews(ctx context.Context, symbol, from, to string) ([]finnhub.NewsItem, error) {
	ctx, span := trace.StartSpan(ctx, "finnhub.CompanyNews")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching company news", "symbol", symbol, "from", from, "to", to)

	items, err := o.api.CompanyNews(ctx, symbol, from, to)
	if err != nil {
		trace.RecordError(span, err)
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch company news", err, "symbol", symbol, "from", from, "to", to)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Company news fetched", "symbol", symbol, "count", len(items))
	return items, nil
}
