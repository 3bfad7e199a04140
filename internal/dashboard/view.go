package dashboard

import (
	"strconv"

	"finance-dashboard/internal/finnhub"
	"finance-dashboard/internal/fundamentals"
	"finance-dashboard/internal/market"
)

const (
	PageTitle    = "Finance Dashboard"
	PageSubtitle = "Stocks 📈"

	ChartHeading     = "Historical Stock Prices"
	ProfileHeading   = "Company Profile"
	EarningsHeading  = "Earnings"
	NewsHeading      = "News"
	ChartXAxisTitle  = "Date"
	ChartYAxisTitle  = "Price (in USD)"
	ProfileErrPrefix = "Error fetching company profile: "
	NoProfileMessage = "No company profile information available."
)

// View is one fully or partially rendered dashboard page. Sections are nil
// until the render reaches them.
type View struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	Ticker   string           `json:"ticker"`
	Start    string           `json:"start"`
	End      string           `json:"end"`
	Tickers  []string         `json:"tickers"`
	Header   string           `json:"header,omitempty"`
	Chart    *ChartSection    `json:"chart,omitempty"`
	Profile  *ProfileSection  `json:"profile,omitempty"`
	Earnings *EarningsSection `json:"earnings,omitempty"`
	News     *NewsSection     `json:"news,omitempty"`
}

type ChartSection struct {
	Heading    string            `json:"heading"`
	Title      string            `json:"title"`
	XAxisTitle string            `json:"xaxis_title"`
	YAxisTitle string            `json:"yaxis_title"`
	Bars       []market.PriceBar `json:"bars"`
}

// Empty reports whether there is nothing to plot.
func (c *ChartSection) Empty() bool { return len(c.Bars) == 0 }

type ProfileField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProfileSection holds either the profile fields or the fallback message,
// plus the recoverable fetch error when there was one.
type ProfileSection struct {
	Heading  string         `json:"heading"`
	Error    string         `json:"error,omitempty"`
	Fallback string         `json:"fallback,omitempty"`
	Fields   []ProfileField `json:"fields,omitempty"`
	Website  string         `json:"website,omitempty"`
	Logo     string         `json:"logo,omitempty"`
}

type EarningsSection struct {
	Heading string                        `json:"heading"`
	Columns []string                      `json:"columns"`
	Rows    [][]string                    `json:"rows"`
	Records []fundamentals.EarningsRecord `json:"records"`
}

type NewsSection struct {
	Heading string             `json:"heading"`
	From    string             `json:"from"`
	To      string             `json:"to"`
	Items   []finnhub.NewsItem `json:"items"`
	Empty   string             `json:"empty,omitempty"`
}

func profileSection(p *finnhub.CompanyProfile) *ProfileSection {
	if p == nil {
		return &ProfileSection{Heading: ProfileHeading, Fallback: NoProfileMessage}
	}
	return &ProfileSection{
		Heading: ProfileHeading,
		Fields: []ProfileField{
			{"Country", p.Country},
			{"Currency", p.Currency},
			{"Exchange", p.Exchange},
			{"Industry", p.FinnhubIndustry},
			{"IPO Date", p.IPO},
			{"Market Capitalization (millions)", formatFloat(p.MarketCapitalization)},
			{"Name", p.Name},
			{"Phone", p.Phone},
			{"Shares Outstanding", formatFloat(p.ShareOutstanding)},
			{"Ticker", p.Ticker},
		},
		Website: p.WebURL,
		Logo:    p.Logo,
	}
}

func earningsSection(records []fundamentals.EarningsRecord) *EarningsSection {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Cells()
	}
	return &EarningsSection{
		Heading: EarningsHeading,
		Columns: fundamentals.EarningsColumns,
		Rows:    rows,
		Records: records,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
