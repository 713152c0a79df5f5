// Package valuation computes the derived value and profit/loss figures for
// a holding. All arithmetic is exact decimal; nothing here does I/O.
package valuation

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Valuation is the derived, never-persisted view of a holding against a
// current price.
type Valuation struct {
	CurrentValue         decimal.Decimal
	ProfitLoss           decimal.Decimal
	ProfitLossPercentage decimal.Decimal
}

// Valuate prices a holding of quantity units bought at entryPrice against
// currentPrice. A missing current price is passed as zero by callers, which
// yields a loss equal to the full investment.
//
// The percentage is rounded to 4 decimal places, half away from zero, and
// is zero whenever the investment is zero.
func Valuate(quantity, entryPrice, currentPrice decimal.Decimal) Valuation {
	currentValue := currentPrice.Mul(quantity)
	investment := entryPrice.Mul(quantity)
	profitLoss := currentValue.Sub(investment)

	percentage := decimal.Zero
	if investment.IsPositive() {
		percentage = profitLoss.Div(investment).Mul(hundred).Round(4)
	}

	return Valuation{
		CurrentValue:         currentValue,
		ProfitLoss:           profitLoss,
		ProfitLossPercentage: percentage,
	}
}
