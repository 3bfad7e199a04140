// Package tickers builds the S&P 500 symbol directory from the Wikipedia
// constituents page.
package tickers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"finance-dashboard/internal/logger"
)

const DefaultPageURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

const symbolHeader = "Symbol"

var (
	// ErrNoTable means the page had no <table> element.
	ErrNoTable = errors.New("tickers: no table found on page")
	// ErrNoSymbolColumn means the first table has no "Symbol" header cell.
	ErrNoSymbolColumn = errors.New("tickers: first table has no Symbol column")
)

// Loader fetches the directory page on every call; results are not cached.
type Loader struct {
	pageURL   string
	timeout   time.Duration
	userAgent string
}

// Option configures a Loader.
type Option func(*Loader)

// WithPageURL overrides the directory page.
func WithPageURL(u string) Option {
	return func(l *Loader) { l.pageURL = u }
}

// WithTimeout sets the page request timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithUserAgent sets the User-Agent header sent with the page request.
func WithUserAgent(ua string) Option {
	return func(l *Loader) { l.userAgent = ua }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{pageURL: DefaultPageURL, timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the Symbol column of the page's first table in table order.
func (l *Loader) Load(ctx context.Context) ([]string, error) {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(l.timeout)

	if l.userAgent != "" {
		c.OnRequest(func(r *colly.Request) {
			r.Headers.Set("User-Agent", l.userAgent)
		})
	}

	var (
		seen    bool
		symbols []string
		bodyErr error
	)
	c.OnHTML("table", func(e *colly.HTMLElement) {
		if seen {
			return
		}
		seen = true
		symbols, bodyErr = symbolColumn(e.DOM)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Ticker page request failed", err, "url", r.Request.URL.String(), "status", r.StatusCode)
	})

	if err := c.Visit(l.pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", l.pageURL, err)
	}
	c.Wait()

	if !seen {
		return nil, ErrNoTable
	}
	if bodyErr != nil {
		return nil, bodyErr
	}

	logger.Debug(ctx, "Ticker directory loaded", "count", len(symbols))
	return symbols, nil
}

// ParseSymbols extracts the Symbol column of the first table in an HTML
// document.
func ParseSymbols(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}
	return symbolColumn(table)
}

func symbolColumn(table *goquery.Selection) ([]string, error) {
	// rows of nested tables belong to those tables
	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})

	col := -1
	headerRow := -1
	rows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Children().Filter("th, td")
		if tr.Children().Filter("th").Length() == 0 {
			return true
		}
		cells.EachWithBreak(func(j int, cell *goquery.Selection) bool {
			if strings.TrimSpace(cell.Text()) == symbolHeader {
				col = j
				return false
			}
			return true
		})
		headerRow = i
		return false
	})
	if col < 0 {
		return nil, ErrNoSymbolColumn
	}

	symbols := make([]string, 0, rows.Length())
	rows.Each(func(i int, tr *goquery.Selection) {
		if i <= headerRow {
			return
		}
		cell := tr.Children().Filter("th, td").Eq(col)
		if cell.Length() == 0 {
			return
		}
		symbols = append(symbols, strings.TrimSpace(cell.Text()))
	})
	return symbols, nil
}
