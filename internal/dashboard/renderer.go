// Package dashboard assembles the dashboard page from the upstream clients in
// one linear pass.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-dashboard/internal/finnhub"
	"finance-dashboard/internal/fundamentals"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/market"
	"finance-dashboard/internal/memo"
	"finance-dashboard/internal/news"
	"finance-dashboard/internal/store"
	"finance-dashboard/internal/trace"
)

var (
	// ErrInvalidRange means the start date is after the end date.
	ErrInvalidRange = errors.New("start date must not be after end date")
	// ErrNoTickers means no ticker was chosen and the directory was empty.
	ErrNoTickers = errors.New("ticker directory is empty")
)

// TickerSource lists the selectable symbols.
type TickerSource interface {
	Load(ctx context.Context) ([]string, error)
}

// FundamentalsSource provides profile and earnings data.
type FundamentalsSource interface {
	FetchCompanyProfile(ctx context.Context, ticker string) (*finnhub.CompanyProfile, error)
	FetchEarnings(ctx context.Context, ticker string) ([]fundamentals.EarningsRecord, error)
}

// NewsSource provides company news for a date window.
type NewsSource interface {
	FetchNews(ctx context.Context, ticker, from, to string) ([]finnhub.NewsItem, error)
}

// Deps are the upstream clients a Renderer reads from.
type Deps struct {
	Tickers      TickerSource
	History      market.HistoryProvider
	Fundamentals FundamentalsSource
	News         NewsSource
	// Clock anchors the news window; defaults to the wall clock.
	Clock memo.Clock
}

// Config holds render defaults.
type Config struct {
	DefaultStart   time.Time
	DefaultEnd     time.Time
	NewsWindowDays int
}

// Params are the user inputs. Zero values fall back to Config defaults and
// the first directory symbol.
type Params struct {
	Ticker string
	Start  time.Time
	End    time.Time
}

// Renderer builds a View per call. It holds no state besides its clients;
// memoization lives in the clients themselves.
type Renderer struct {
	deps Deps
	cfg  Config
}

func NewRenderer(deps Deps, cfg Config) *Renderer {
	if deps.Clock == nil {
		deps.Clock = memo.SystemClock
	}
	if cfg.NewsWindowDays <= 0 {
		cfg.NewsWindowDays = news.DefaultWindowDays
	}
	return &Renderer{deps: deps, cfg: cfg}
}

// Render runs the whole pipeline once. On failure it returns the sections
// built so far together with the error.
func (r *Renderer) Render(ctx context.Context, p Params) (*View, error) {
	timer := logger.StartOperation(ctx, "dashboard.Render", "ticker", p.Ticker)
	ctx = timer.GetContext()

	view, err := r.render(ctx, p)
	if err != nil {
		timer.EndWithError(err, "ticker", view.Ticker)
		return view, err
	}
	timer.End("ticker", view.Ticker, "bars", len(view.Chart.Bars), "news", len(view.News.Items))
	return view, nil
}

func (r *Renderer) render(ctx context.Context, p Params) (*View, error) {
	start, end := p.Start, p.End
	if start.IsZero() {
		start = r.cfg.DefaultStart
	}
	if end.IsZero() {
		end = r.cfg.DefaultEnd
	}

	view := &View{
		Title:    PageTitle,
		Subtitle: PageSubtitle,
		Ticker:   p.Ticker,
		Start:    start.Format(store.DateLayout),
		End:      end.Format(store.DateLayout),
	}
	if start.After(end) {
		return view, fmt.Errorf("%w: %s > %s", ErrInvalidRange, view.Start, view.End)
	}

	symbols, err := r.deps.Tickers.Load(ctx)
	if err != nil {
		return view, fmt.Errorf("load ticker directory: %w", err)
	}
	view.Tickers = symbols
	if view.Ticker == "" {
		if len(symbols) == 0 {
			return view, ErrNoTickers
		}
		view.Ticker = symbols[0]
	}
	ticker := view.Ticker

	if err := r.renderChart(ctx, view, start, end); err != nil {
		return view, err
	}

	if err := r.renderProfile(ctx, view); err != nil {
		return view, err
	}

	records, err := r.deps.Fundamentals.FetchEarnings(ctx, ticker)
	if err != nil {
		return view, fmt.Errorf("fetch earnings for %s: %w", ticker, err)
	}
	view.Earnings = earningsSection(records)

	from, to := news.Window(r.deps.Clock.Now(), r.cfg.NewsWindowDays)
	items, err := r.deps.News.FetchNews(ctx, ticker, from, to)
	if err != nil {
		return view, fmt.Errorf("fetch news for %s: %w", ticker, err)
	}
	view.News = &NewsSection{Heading: NewsHeading, From: from, To: to, Items: items}
	if len(items) == 0 {
		view.News.Empty = news.NoNewsMessage
	}

	return view, nil
}

func (r *Renderer) renderChart(ctx context.Context, view *View, start, end time.Time) error {
	ctx, span := trace.StartSpan(ctx, "dashboard.renderChart")
	defer span.End()

	h, err := r.deps.History.History(ctx, view.Ticker, start, end)
	if err != nil {
		trace.RecordError(span, err)
		return fmt.Errorf("fetch price history for %s: %w", view.Ticker, err)
	}

	view.Header = h.LongName
	view.Chart = &ChartSection{
		Heading:    ChartHeading,
		Title:      fmt.Sprintf("%s Stock Price Data", h.LongName),
		XAxisTitle: ChartXAxisTitle,
		YAxisTitle: ChartYAxisTitle,
		Bars:       h.Bars,
	}
	if view.Chart.Bars == nil {
		view.Chart.Bars = []market.PriceBar{}
	}
	return nil
}

// renderProfile turns an upstream rejection into an in-page error plus the
// fallback message. Transport failures still abort the render.
func (r *Renderer) renderProfile(ctx context.Context, view *View) error {
	profile, err := r.deps.Fundamentals.FetchCompanyProfile(ctx, view.Ticker)
	if err != nil {
		var apiErr *finnhub.APIError
		if !errors.As(err, &apiErr) {
			return fmt.Errorf("fetch company profile for %s: %w", view.Ticker, err)
		}
		logger.Warn(ctx, "Company profile unavailable", "ticker", view.Ticker, "error", err.Error())
		section := profileSection(nil)
		section.Error = ProfileErrPrefix + err.Error()
		view.Profile = section
		return nil
	}
	view.Profile = profileSection(profile)
	return nil
}
