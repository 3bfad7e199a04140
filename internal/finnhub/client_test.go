package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("test-token", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		if _, err := New(key); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("New(%q) error = %v, want ErrMissingAPIKey", key, err)
		}
	}
}

func TestCompanyProfile2(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/profile2" {
			t.Errorf("path = %s, want /stock/profile2", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol = %q, want AAPL", got)
		}
		if got := r.Header.Get("X-Finnhub-Token"); got != "test-token" {
			t.Errorf("token header = %q, want test-token", got)
		}
		w.Write([]byte(`{"country":"US","currency":"USD","exchange":"NASDAQ NMS - GLOBAL MARKET","finnhubIndustry":"Technology","ipo":"1980-12-12","logo":"https://static.finnhub.io/logo/aapl.png","marketCapitalization":2874156.05,"name":"Apple Inc","phone":"14089961010","shareOutstanding":15634.23,"ticker":"AAPL","weburl":"https://www.apple.com/"}`))
	})

	p, err := c.CompanyProfile2(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("CompanyProfile2() error = %v", err)
	}
	if p.IsEmpty() {
		t.Fatal("expected a populated profile")
	}
	if p.Name != "Apple Inc" || p.FinnhubIndustry != "Technology" || p.MarketCapitalization != 2874156.05 {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestCompanyProfile2Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	p, err := c.CompanyProfile2(context.Background(), "ZZZZ")
	if err != nil {
		t.Fatalf("CompanyProfile2() error = %v", err)
	}
	if !p.IsEmpty() {
		t.Errorf("expected empty profile, got %+v", p)
	}
}

func TestRejectionIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"API limit reached. Please try again later."}`))
	})

	_, err := c.CompanyProfile2(context.Background(), "AAPL")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
	if apiErr.Message != "API limit reached. Please try again later." {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestCompanyEarningsKeepsRawFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/earnings" {
			t.Errorf("path = %s, want /stock/earnings", r.URL.Path)
		}
		w.Write([]byte(`[{"actual":1.46,"estimate":1.39,"period":"2023-09-30","quarter":4,"surprise":0.07,"surprisePercent":5.0360,"symbol":"AAPL","year":2023}]`))
	})

	records, err := c.CompanyEarnings(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("CompanyEarnings() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if string(records[0]["period"]) != `"2023-09-30"` {
		t.Errorf("period = %s", records[0]["period"])
	}
	if _, ok := records[0]["symbol"]; !ok {
		t.Error("expected passthrough field symbol")
	}
}

func TestCompanyNewsSendsDatesVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") != "2023-9-1" || q.Get("to") != "2023-10-01" {
			t.Errorf("from/to = %q/%q", q.Get("from"), q.Get("to"))
		}
		w.Write([]byte(`[{"category":"company","datetime":1696111200,"headline":"Apple event","id":1,"image":"","related":"AAPL","source":"Yahoo","summary":"s","url":"https://example.com/a"}]`))
	})

	items, err := c.CompanyNews(context.Background(), "AAPL", "2023-9-1", "2023-10-01")
	if err != nil {
		t.Fatalf("CompanyNews() error = %v", err)
	}
	if len(items) != 1 || items[0].Headline != "Apple event" {
		t.Fatalf("unexpected items %+v", items)
	}
	if got := items[0].Published().Format("2006-01-02"); got != "2023-09-30" {
		t.Errorf("Published() = %s, want 2023-09-30", got)
	}
}
