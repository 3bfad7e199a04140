package marketobs

import (
	"context"
	"time"

	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/market"
	"finance-dashboard/internal/store"
	"finance-dashboard/internal/trace"
)

// observableHistory wraps a HistoryProvider with logging and tracing
type observableHistory struct {
	provider market.HistoryProvider
}

var _ market.HistoryProvider = (*observableHistory)(nil)

// Wrap wraps a history provider with observability middleware
func Wrap(provider market.HistoryProvider) market.HistoryProvider {
	return &observableHistory{provider: provider}
}

// History fetches daily bars with observability
func (o *observableHistory) History(ctx context.Context, symbol string, start, end time.Time) (*market.History, error) {
	ctx, span := trace.StartSpan(ctx, "market.History")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching price history",
		"symbol", symbol,
		"start", start.Format(store.DateLayout),
		"end", end.Format(store.DateLayout),
	)

	h, err := o.provider.History(ctx, symbol, start, end)
	if err != nil {
		trace.RecordError(span, err)
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price history", err, "symbol", symbol)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Price history fetched", "symbol", symbol, "bars", len(h.Bars), "name", h.LongName)
	return h, nil
}

// observableNames wraps a NameResolver with logging and tracing
type observableNames struct {
	resolver market.NameResolver
}

var _ market.NameResolver = (*observableNames)(nil)

// WrapNames wraps a name resolver with observability middleware
func WrapNames(resolver market.NameResolver) market.NameResolver {
	return &observableNames{resolver: resolver}
}

// LongName resolves a display name with observability
func (o *observableNames) LongName(ctx context.Context, symbol string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "market.LongName")
	defer span.End()

	name, err := o.resolver.LongName(ctx, symbol)
	if err != nil {
		trace.RecordError(span, err)
		logger.ErrorWithErrSkip(ctx, 1, "Failed to resolve display name", err, "symbol", symbol)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Display name resolved", "symbol", symbol, "name", name)
	return name, nil
}
