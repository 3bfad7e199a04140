package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"finance-dashboard/internal/dashboard"
	"finance-dashboard/internal/finnhub"
	"finance-dashboard/internal/finnhub/finnhubobs"
	"finance-dashboard/internal/fundamentals"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/market"
	"finance-dashboard/internal/market/marketobs"
	"finance-dashboard/internal/memo"
	"finance-dashboard/internal/news"
	"finance-dashboard/internal/store"
	"finance-dashboard/internal/tickers"
	"finance-dashboard/internal/trace"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeFinnhub creates the Finnhub client with observability. The
// credential is checked here so a missing key stops startup.
func initializeFinnhub(ctx context.Context, cfg *store.Config) (finnhub.API, error) {
	opts := []finnhub.Option{
		finnhub.WithTimeout(cfg.HTTPTimeout()),
		finnhub.WithLogging(logger.IsDebugEnabled()),
	}
	if cfg.Finnhub.BaseURL != "" {
		opts = append(opts, finnhub.WithBaseURL(cfg.Finnhub.BaseURL))
	}

	client, err := finnhub.New(cfg.APIKey(), opts...)
	if err != nil {
		logger.ErrorWithErr(ctx, "Finnhub client not configured", err, "env", cfg.Finnhub.APIKeyEnv)
		return nil, fmt.Errorf("%w (set %s)", err, cfg.Finnhub.APIKeyEnv)
	}
	return finnhubobs.Wrap(client), nil
}

// initializeMarket creates the price history client with observability
func initializeMarket(cfg *store.Config) market.HistoryProvider {
	opts := []market.Option{
		market.WithTimeout(cfg.HTTPTimeout()),
		market.WithUserAgent(cfg.HTTP.UserAgent),
		market.WithNameResolver(marketobs.WrapNames(market.NewYFNames(cfg.HTTPTimeout()))),
		market.WithLogging(logger.IsDebugEnabled()),
	}
	if cfg.Yahoo.ChartURL != "" {
		opts = append(opts, market.WithChartURL(cfg.Yahoo.ChartURL))
	}
	return marketobs.Wrap(market.NewClient(opts...))
}

// initializeTickers creates the ticker directory loader
func initializeTickers(cfg *store.Config) *tickers.Loader {
	opts := []tickers.Option{
		tickers.WithTimeout(cfg.HTTPTimeout()),
		tickers.WithUserAgent(cfg.HTTP.UserAgent),
	}
	if cfg.Tickers.PageURL != "" {
		opts = append(opts, tickers.WithPageURL(cfg.Tickers.PageURL))
	}
	return tickers.NewLoader(opts...)
}

// buildRenderer wires every upstream client into a dashboard renderer
func buildRenderer(ctx context.Context, cfg *store.Config) (*dashboard.Renderer, error) {
	api, err := initializeFinnhub(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy := memo.NeverExpire()
	if ttl := cfg.CacheTTL(); ttl > 0 {
		policy = memo.ExpireAfter(ttl)
		logger.Info(ctx, "Memoized results expire", "ttl", ttl.String())
	}

	start, end := cfg.DefaultRange()
	return dashboard.NewRenderer(dashboard.Deps{
		Tickers:      initializeTickers(cfg),
		History:      initializeMarket(cfg),
		Fundamentals: fundamentals.NewService(api, memo.WithPolicy(policy)),
		News:         news.NewService(api, memo.WithPolicy(policy)),
	}, dashboard.Config{
		DefaultStart:   start,
		DefaultEnd:     end,
		NewsWindowDays: cfg.Defaults.NewsWindowDays,
	}), nil
}
