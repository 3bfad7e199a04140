package tickers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const constituentsPage = `<html><body>
<table class="wikitable" id="constituents">
<tbody>
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="/x">MMM</a></td><td>3M</td><td>Industrials</td></tr>
<tr><td><a href="/x">AOS</a>
</td><td>A. O. Smith</td><td>Industrials</td></tr>
<tr><td>ABT</td><td>Abbott<table><tr><th>Symbol</th></tr><tr><td>NESTED</td></tr></table></td><td>Health Care</td></tr>
</tbody>
</table>
<table><tr><th>Date</th><th>Symbol</th></tr><tr><td>2023-09-18</td><td>BX</td></tr></table>
</body></html>`

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestParseSymbolsFirstTableOnly(t *testing.T) {
	got, err := ParseSymbols(strings.NewReader(constituentsPage))
	if err != nil {
		t.Fatalf("ParseSymbols() error = %v", err)
	}
	want := []string{"MMM", "AOS", "ABT"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseSymbolsErrors(t *testing.T) {
	tests := []struct {
		name string
		html string
		want error
	}{
		{"no table", `<html><body><p>nothing</p></body></html>`, ErrNoTable},
		{"no symbol column", `<table><tr><th>Ticker</th></tr><tr><td>MMM</td></tr></table>`, ErrNoSymbolColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSymbols(strings.NewReader(tt.html)); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if got := r.Header.Get("User-Agent"); got != "dashboard-test" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(constituentsPage))
	}))
	defer srv.Close()

	l := NewLoader(WithPageURL(srv.URL+"/wiki/List"), WithUserAgent("dashboard-test"))
	for i := 0; i < 2; i++ {
		got, err := l.Load(context.Background())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(got) != 3 || got[0] != "MMM" {
			t.Errorf("Load() = %v", got)
		}
	}
	if hits != 2 {
		t.Errorf("page fetched %d times, want 2 (no caching)", hits)
	}
}

func TestLoadNoTable(t *testing.T) {
	url := serve(t, http.StatusOK, `<html><body><p>moved</p></body></html>`)

	if _, err := NewLoader(WithPageURL(url)).Load(context.Background()); !errors.Is(err, ErrNoTable) {
		t.Errorf("error = %v, want ErrNoTable", err)
	}
}

func TestLoadUnreachable(t *testing.T) {
	url := serve(t, http.StatusNotFound, `<html><body>missing</body></html>`)

	if _, err := NewLoader(WithPageURL(url)).Load(context.Background()); err == nil {
		t.Error("expected an error for a 404 page")
	}
}
