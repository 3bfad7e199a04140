// Package market fetches daily price history from the Yahoo Finance chart API
// and resolves a symbol's display name.
package market

import (
	"context"
	"time"
)

// PriceBar is one trading day.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// History is a symbol's daily bars in ascending date order, one per date.
type History struct {
	Symbol   string     `json:"symbol"`
	LongName string     `json:"long_name"`
	Bars     []PriceBar `json:"bars"`
}

// HistoryProvider returns daily bars for [start, end). An unknown symbol or
// a window with no trading days yields empty Bars, not an error.
type HistoryProvider interface {
	History(ctx context.Context, symbol string, start, end time.Time) (*History, error)
}

// NameResolver looks up a symbol's display name.
type NameResolver interface {
	LongName(ctx context.Context, symbol string) (string, error)
}
