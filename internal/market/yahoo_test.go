package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const chartFixture = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","gmtoffset":-14400},
	"timestamp":[1695994200,1695821400,1695907800,1695999600],
	"indicators":{"quote":[{
		"open":[171.0,null,169.3,171.2],
		"high":[173.0,null,172.0,173.1],
		"low":[170.3,null,167.6,170.4],
		"close":[171.1,null,170.4,171.21]
	}]}
}],"error":null}}`

type fakeNames struct {
	name  string
	err   error
	calls int
}

func (f *fakeNames) LongName(ctx context.Context, symbol string) (string, error) {
	f.calls++
	return f.name, f.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHistoryParsesChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/AAPL" {
			t.Errorf("path = %s, want /AAPL", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("interval") != "1d" {
			t.Errorf("interval = %q, want 1d", q.Get("interval"))
		}
		if q.Get("period1") != "1695772800" || q.Get("period2") != "1696118400" {
			t.Errorf("period1/period2 = %s/%s", q.Get("period1"), q.Get("period2"))
		}
		w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	names := &fakeNames{name: "Apple Inc."}
	c := NewClient(WithChartURL(srv.URL+"/"), WithNameResolver(names))

	h, err := c.History(context.Background(), "AAPL", day(2023, 9, 27), day(2023, 10, 1))
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.LongName != "Apple Inc." || names.calls != 1 {
		t.Errorf("LongName = %q after %d resolver calls", h.LongName, names.calls)
	}
	if len(h.Bars) != 2 {
		t.Fatalf("len(Bars) = %d, want 2 (null dropped, duplicate merged)", len(h.Bars))
	}
	if !h.Bars[0].Date.Equal(day(2023, 9, 28)) || !h.Bars[1].Date.Equal(day(2023, 9, 29)) {
		t.Errorf("dates = %v, %v", h.Bars[0].Date, h.Bars[1].Date)
	}
	if h.Bars[1].Close != 171.21 {
		t.Errorf("duplicate date should keep the last bar, close = %v", h.Bars[1].Close)
	}
}

func TestHistoryWithoutResolverUsesSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"MSFT"},"timestamp":null,"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	h, err := NewClient(WithChartURL(srv.URL+"/")).History(context.Background(), "MSFT", day(2023, 9, 30), day(2023, 10, 1))
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.LongName != "MSFT" {
		t.Errorf("LongName = %q, want MSFT", h.LongName)
	}
	if h.Bars == nil || len(h.Bars) != 0 {
		t.Errorf("expected empty non-nil bars, got %v", h.Bars)
	}
}

func TestHistoryUnknownSymbolIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	names := &fakeNames{err: errors.New("Quote not found for symbol: ZZZZ")}
	c := NewClient(WithChartURL(srv.URL+"/"), WithNameResolver(names))

	h, err := c.History(context.Background(), "ZZZZ", day(2023, 9, 1), day(2023, 10, 1))
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.Bars == nil || len(h.Bars) != 0 {
		t.Errorf("expected empty non-nil bars, got %v", h.Bars)
	}
	if h.LongName != "ZZZZ" {
		t.Errorf("LongName = %q, want ZZZZ", h.LongName)
	}
	if names.calls != 0 {
		t.Errorf("resolver called %d times for an unknown symbol, want 0", names.calls)
	}
}

func TestHistoryEmptyBarsToleratesResolverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"NEWCO"},"timestamp":null,"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(WithChartURL(srv.URL+"/"), WithNameResolver(&fakeNames{err: errors.New("quote summary: 404")}))

	h, err := c.History(context.Background(), "NEWCO", day(2023, 9, 1), day(2023, 10, 1))
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.LongName != "NEWCO" || len(h.Bars) != 0 {
		t.Errorf("got %+v, want empty history named NEWCO", h)
	}
}

func TestHistoryUpstreamFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(WithChartURL(srv.URL+"/")).History(context.Background(), "AAPL", day(2023, 9, 1), day(2023, 10, 1))
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestHistoryResolverErrorPropagatesWithBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	boom := errors.New("quote summary down")
	c := NewClient(WithChartURL(srv.URL+"/"), WithNameResolver(&fakeNames{err: boom}))

	if _, err := c.History(context.Background(), "AAPL", day(2023, 9, 27), day(2023, 10, 1)); !errors.Is(err, boom) {
		t.Fatalf("History() error = %v, want %v", err, boom)
	}
}
