// Package finnhub is a thin REST client for the Finnhub company endpoints the
// dashboard reads: profile2, earnings and company-news.
package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"finance-dashboard/internal/api"
)

const DefaultBaseURL = "https://finnhub.io/api/v1"

// ErrMissingAPIKey is returned by New when no credential is supplied.
var ErrMissingAPIKey = errors.New("finnhub: api key is required")

// API is the set of Finnhub calls the dashboard makes.
type API interface {
	CompanyProfile2(ctx context.Context, symbol string) (*CompanyProfile, error)
	CompanyEarnings(ctx context.Context, symbol string) ([]RawRecord, error)
	CompanyNews(ctx context.Context, symbol, from, to string) ([]NewsItem, error)
}

// APIError is an upstream rejection: rate limit, bad symbol, bad token.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FinnhubAPIException(status_code: %d): %s", e.StatusCode, e.Message)
}

// Client implements API over HTTPS.
type Client struct {
	http   *api.Client
	apiKey string
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*settings)

type settings struct {
	baseURL string
	timeout time.Duration
	logging bool
}

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithLogging turns on request/response logging in the HTTP layer.
func WithLogging(enabled bool) Option {
	return func(s *settings) { s.logging = enabled }
}

// New validates the credential up front so a missing key fails at startup
// rather than on the first request.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	s := settings{baseURL: DefaultBaseURL, timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&s)
	}

	return &Client{
		http: api.NewClient(
			api.WithBaseURL(s.baseURL),
			api.WithTimeout(s.timeout),
			api.WithHeader("Accept", "application/json"),
			api.WithLogging(s.logging),
		),
		apiKey: apiKey,
	}, nil
}

// CompanyProfile2 calls /stock/profile2. Unknown symbols come back as an
// empty profile, not an error.
func (c *Client) CompanyProfile2(ctx context.Context, symbol string) (*CompanyProfile, error) {
	var profile CompanyProfile
	if err := c.get(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CompanyEarnings calls /stock/earnings and keeps each record as raw JSON
// fields so callers can enforce their own field contract.
func (c *Client) CompanyEarnings(ctx context.Context, symbol string) ([]RawRecord, error) {
	var records []RawRecord
	if err := c.get(ctx, "/stock/earnings", url.Values{"symbol": {symbol}}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CompanyNews calls /company-news. from and to are sent exactly as given.
func (c *Client) CompanyNews(ctx context.Context, symbol, from, to string) ([]NewsItem, error) {
	var items []NewsItem
	q := url.Values{"symbol": {symbol}, "from": {from}, "to": {to}}
	if err := c.get(ctx, "/company-news", q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	resp, err := c.http.GETQuery(ctx, path, q, map[string]string{
		"X-Finnhub-Token": c.apiKey,
	})
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			return &APIError{StatusCode: se.StatusCode, Message: errorMessage(se.Body)}
		}
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	if err := resp.ParseJSON(out); err != nil {
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	return nil
}

// errorMessage pulls {"error": "..."} out of a rejection body, falling back
// to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
