package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"finance-dashboard/internal/api"
	"finance-dashboard/internal/logger"
)

const DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// chartNotFound is the error code Yahoo uses for unknown or delisted symbols.
const chartNotFound = "Not Found"

// Client implements HistoryProvider against the Yahoo chart v8 endpoint.
type Client struct {
	http  *api.Client
	names NameResolver
}

var _ HistoryProvider = (*Client)(nil)

// Option configures a Client.
type Option func(*settings)

type settings struct {
	chartURL  string
	timeout   time.Duration
	userAgent string
	names     NameResolver
	logging   bool
}

// WithChartURL overrides the chart endpoint, e.g. for a test server.
func WithChartURL(u string) Option {
	return func(s *settings) { s.chartURL = u }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithUserAgent replaces the default browser user agent.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// WithNameResolver sets where LongName comes from. Without one the symbol
// itself is used.
func WithNameResolver(r NameResolver) Option {
	return func(s *settings) { s.names = r }
}

// WithLogging turns on request/response logging in the HTTP layer.
func WithLogging(enabled bool) Option {
	return func(s *settings) { s.logging = enabled }
}

// NewClient creates a chart client.
func NewClient(opts ...Option) *Client {
	s := settings{chartURL: DefaultChartURL, timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&s)
	}

	clientOpts := []api.ClientOption{
		api.WithBaseURL(s.chartURL),
		api.WithTimeout(s.timeout),
		api.WithHeaders(api.YahooFinanceHeaders()),
		api.WithUserAgent(s.userAgent),
		api.WithLogging(s.logging),
	}
	return &Client{http: api.NewClient(clientOpts...), names: s.names}
}

// yahooChart is the response structure from the chart API. Price arrays use
// pointers because holidays and halted sessions come back as null.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *chartError `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *chartError) Error() string {
	return fmt.Sprintf("yahoo chart: %s: %s", e.Code, e.Description)
}

// History fetches daily bars with period1 = start and period2 = end, both at
// UTC midnight; end is exclusive as on the provider side. Symbols Yahoo does
// not know yield empty bars named after the symbol.
func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) (*History, error) {
	bars, found, err := c.bars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if !found || c.names == nil {
		return &History{Symbol: symbol, LongName: symbol, Bars: bars}, nil
	}

	name, err := c.names.LongName(ctx, symbol)
	if err != nil {
		if len(bars) > 0 {
			return nil, fmt.Errorf("resolve name for %s: %w", symbol, err)
		}
		// empty history falls back to the symbol
		logger.Warn(ctx, "Name lookup failed for empty history", "symbol", symbol, "error", err)
		name = symbol
	}

	return &History{Symbol: symbol, LongName: name, Bars: bars}, nil
}

// bars reports found=false when Yahoo does not recognize the symbol.
func (c *Client) bars(ctx context.Context, symbol string, start, end time.Time) ([]PriceBar, bool, error) {
	q := url.Values{
		"interval": {"1d"},
		"period1":  {strconv.FormatInt(midnightUTC(start).Unix(), 10)},
		"period2":  {strconv.FormatInt(midnightUTC(end).Unix(), 10)},
	}

	resp, err := c.http.GETQuery(ctx, url.PathEscape(symbol), q)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound && isNotFound(se.Body) {
			logger.Debug(ctx, "Symbol not found upstream", "symbol", symbol)
			return []PriceBar{}, false, nil
		}
		return nil, false, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	var chart yahooChart
	if err := resp.ParseJSON(&chart); err != nil {
		return nil, false, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == chartNotFound {
			return []PriceBar{}, false, nil
		}
		return nil, false, e
	}
	if len(chart.Chart.Result) == 0 {
		return []PriceBar{}, true, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []PriceBar{}, true, nil
	}
	quote := result.Indicators.Quote[0]

	byDate := make(map[time.Time]PriceBar, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, h, l, cl := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || cl == nil {
			continue
		}
		// exchange-local calendar date
		date := midnightUTC(time.Unix(ts+result.Meta.GMTOffset, 0).UTC())
		byDate[date] = PriceBar{Date: date, Open: *o, High: *h, Low: *l, Close: *cl}
	}

	bars := make([]PriceBar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, true, nil
}

func isNotFound(body []byte) bool {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return false
	}
	return chart.Chart.Error != nil && chart.Chart.Error.Code == chartNotFound
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
