// Package termview prints a dashboard view as terminal tables.
package termview

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"finance-dashboard/internal/dashboard"
	"finance-dashboard/internal/store"
)

type Options struct {
	// MaxBars limits the price table to the most recent bars; <= 0 prints all.
	MaxBars int
	// Color selects the colored table style.
	Color bool
	// MaxColWidth wraps wide cells; defaults to 60.
	MaxColWidth int
}

// Render writes every section the view holds, in page order. Sections the
// render never reached are skipped. The output is assembled first and written
// to w in one call; the returned error is w's.
func Render(w io.Writer, view *dashboard.View, opts Options) error {
	if view == nil {
		return nil
	}
	if opts.MaxColWidth <= 0 {
		opts.MaxColWidth = 60
	}

	var buf bytes.Buffer
	writeView(&buf, view, opts)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	return nil
}

func writeView(w io.Writer, view *dashboard.View, opts Options) {

	fmt.Fprintln(w, heading(opts, view.Title))
	fmt.Fprintln(w, view.Subtitle)
	fmt.Fprintf(w, "%s  %s .. %s\n\n", view.Ticker, view.Start, view.End)

	if view.Header != "" {
		fmt.Fprintln(w, heading(opts, view.Header))
		fmt.Fprintln(w)
	}
	if view.Chart != nil {
		renderChart(w, view.Chart, opts)
	}
	if view.Profile != nil {
		renderProfile(w, view.Profile, opts)
	}
	if view.Earnings != nil {
		renderEarnings(w, view.Earnings, opts)
	}
	if view.News != nil {
		renderNews(w, view.News, opts)
	}
}

func heading(opts Options, s string) string {
	if opts.Color {
		return text.Bold.Sprint(s)
	}
	return s
}

func newWriter(w io.Writer, opts Options) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.SeparateRows = false
	return tw
}

func renderChart(w io.Writer, c *dashboard.ChartSection, opts Options) {
	fmt.Fprintln(w, heading(opts, c.Heading))
	if c.Empty() {
		fmt.Fprintln(w, "no price data for the selected range")
		fmt.Fprintln(w)
		return
	}

	bars := c.Bars
	if opts.MaxBars > 0 && len(bars) > opts.MaxBars {
		bars = bars[len(bars)-opts.MaxBars:]
	}

	tw := newWriter(w, opts)
	tw.SetTitle("%s", c.Title)
	tw.AppendHeader(table.Row{c.XAxisTitle, "Open", "High", "Low", "Close"})
	for _, b := range bars {
		tw.AppendRow(table.Row{
			b.Date.Format(store.DateLayout),
			fmt.Sprintf("%.2f", b.Open),
			fmt.Sprintf("%.2f", b.High),
			fmt.Sprintf("%.2f", b.Low),
			fmt.Sprintf("%.2f", b.Close),
		})
	}
	cfgs := make([]table.ColumnConfig, 0, 4)
	for i := 2; i <= 5; i++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)
	if len(bars) < len(c.Bars) {
		tw.SetCaption("last %d of %d bars, %s", len(bars), len(c.Bars), c.YAxisTitle)
	} else {
		tw.SetCaption("%s", c.YAxisTitle)
	}
	tw.Render()
	fmt.Fprintln(w)
}

func renderProfile(w io.Writer, p *dashboard.ProfileSection, opts Options) {
	fmt.Fprintln(w, heading(opts, p.Heading))
	if p.Error != "" {
		fmt.Fprintln(w, "ERROR:", p.Error)
	}
	if len(p.Fields) == 0 {
		fmt.Fprintln(w, p.Fallback)
		fmt.Fprintln(w)
		return
	}

	tw := newWriter(w, opts)
	for _, f := range p.Fields {
		tw.AppendRow(table.Row{f.Label, f.Value})
	}
	tw.AppendRow(table.Row{"Website", p.Website})
	if p.Logo != "" {
		tw.AppendRow(table.Row{"Logo", p.Logo})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: opts.MaxColWidth}})
	tw.Render()
	fmt.Fprintln(w)
}

func renderEarnings(w io.Writer, e *dashboard.EarningsSection, opts Options) {
	fmt.Fprintln(w, heading(opts, e.Heading))

	tw := newWriter(w, opts)
	hdr := make(table.Row, len(e.Columns))
	for i, c := range e.Columns {
		hdr[i] = c
	}
	tw.AppendHeader(hdr)
	for _, r := range e.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		tw.AppendRow(row)
	}
	tw.Render()
	fmt.Fprintln(w)
}

func renderNews(w io.Writer, n *dashboard.NewsSection, opts Options) {
	fmt.Fprintln(w, heading(opts, n.Heading))
	if len(n.Items) == 0 {
		fmt.Fprintln(w, n.Empty)
		return
	}
	for _, it := range n.Items {
		fmt.Fprintln(w, heading(opts, it.Headline))
		if s := strings.TrimSpace(it.Summary); s != "" {
			fmt.Fprintln(w, text.WrapSoft(s, opts.MaxColWidth+20))
		}
		fmt.Fprintln(w, it.URL)
		if it.Image != "" {
			fmt.Fprintln(w, it.Image)
		}
		fmt.Fprintln(w, "---")
	}
}
