package market

import (
	"context"
	"time"

	yfgo "github.com/komsit37/yf-go"
)

// YFNames resolves display names from the Yahoo quote summary price module.
type YFNames struct {
	client  *yfgo.Client
	timeout time.Duration
}

var _ NameResolver = (*YFNames)(nil)

func NewYFNames(timeout time.Duration) *YFNames {
	return &YFNames{client: yfgo.NewClient(), timeout: timeout}
}

// LongName prefers longName, then shortName, then the symbol itself.
func (n *YFNames) LongName(ctx context.Context, symbol string) (string, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	res, err := n.client.QuoteSummaryTyped(ctx, symbol, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return "", err
	}
	if res.Price == nil {
		return symbol, nil
	}
	if res.Price.LongName != "" {
		return res.Price.LongName, nil
	}
	if res.Price.ShortName != "" {
		return res.Price.ShortName, nil
	}
	return symbol, nil
}
