// Package market fetches current price statistics for a coin from the
// external feeds. A Quote combines the trade feed (price, 24h volume) with
// the coin-info feed (market cap); either feed failing or returning an
// unusable payload surfaces as an error, which the refresh tick treats as
// "no data for this coin".
package market

import (
	"context"

	"github.com/shopspring/decimal"
)

type Quote struct {
	Price     decimal.Decimal
	MarketCap decimal.NullDecimal
	Volume24h decimal.NullDecimal
}

type Source interface {
	Fetch(ctx context.Context, ticker string) (Quote, error)
}
