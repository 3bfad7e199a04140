package finnhub

import (
	"encoding/json"
	"time"
)

// CompanyProfile is the /stock/profile2 payload.
type CompanyProfile struct {
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	EstimateCurrency     string  `json:"estimateCurrency,omitempty"`
	Exchange             string  `json:"exchange"`
	FinnhubIndustry      string  `json:"finnhubIndustry"`
	IPO                  string  `json:"ipo"`
	Logo                 string  `json:"logo"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	ShareOutstanding     float64 `json:"shareOutstanding"`
	Ticker               string  `json:"ticker"`
	WebURL               string  `json:"weburl"`
}

// IsEmpty reports whether the upstream returned "{}", which is how Finnhub
// answers for symbols it does not cover.
func (p *CompanyProfile) IsEmpty() bool {
	return p == nil || (p.Ticker == "" && p.Name == "")
}

// RawRecord is one JSON object with its fields left undecoded.
type RawRecord map[string]json.RawMessage

// NewsItem is one /company-news article.
type NewsItem struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// Published converts the unix publish timestamp.
func (n NewsItem) Published() time.Time {
	return time.Unix(n.Datetime, 0).UTC()
}
