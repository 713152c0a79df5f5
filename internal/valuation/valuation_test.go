package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestValuateExactArithmetic(t *testing.T) {
	t.Parallel()

	// 8 fractional digits must survive without any binary rounding drift.
	quantity := dec(t, "0.12345678")
	entryPrice := dec(t, "41234.56789012")
	currentPrice := dec(t, "53987.65432109")

	got := Valuate(quantity, entryPrice, currentPrice)

	wantValue := currentPrice.Mul(quantity)
	wantPL := wantValue.Sub(entryPrice.Mul(quantity))

	if !got.CurrentValue.Equal(wantValue) {
		t.Fatalf("current value: got %s, want %s", got.CurrentValue, wantValue)
	}
	if !got.ProfitLoss.Equal(wantPL) {
		t.Fatalf("profit/loss: got %s, want %s", got.ProfitLoss, wantPL)
	}
}

func TestValuateBTCScenario(t *testing.T) {
	t.Parallel()

	got := Valuate(dec(t, "2"), dec(t, "40000"), dec(t, "51000"))

	if !got.CurrentValue.Equal(dec(t, "102000")) {
		t.Fatalf("current value: got %s, want 102000", got.CurrentValue)
	}
	if !got.ProfitLoss.Equal(dec(t, "22000")) {
		t.Fatalf("profit/loss: got %s, want 22000", got.ProfitLoss)
	}
	if !got.ProfitLossPercentage.Equal(dec(t, "27.5000")) {
		t.Fatalf("percentage: got %s, want 27.5000", got.ProfitLossPercentage)
	}
}

func TestValuateMissingPriceIsFullLoss(t *testing.T) {
	t.Parallel()

	got := Valuate(dec(t, "3"), dec(t, "100"), decimal.Zero)

	if !got.CurrentValue.IsZero() {
		t.Fatalf("expected zero current value, got %s", got.CurrentValue)
	}
	if !got.ProfitLoss.Equal(dec(t, "-300")) {
		t.Fatalf("expected -300 profit/loss, got %s", got.ProfitLoss)
	}
	if !got.ProfitLossPercentage.Equal(dec(t, "-100")) {
		t.Fatalf("expected -100 percentage, got %s", got.ProfitLossPercentage)
	}
}

func TestValuateZeroInvestmentZeroPercentage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                 string
		quantity, entryPrice string
	}{
		{"zero quantity", "0", "40000"},
		{"zero entry price", "2", "0"},
		{"both zero", "0", "0"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Valuate(dec(t, tc.quantity), dec(t, tc.entryPrice), dec(t, "51000"))
			if !got.ProfitLossPercentage.IsZero() {
				t.Fatalf("expected zero percentage, got %s", got.ProfitLossPercentage)
			}
		})
	}
}

func TestValuatePercentageRoundingHalfUp(t *testing.T) {
	t.Parallel()

	// 1/3 gain: 33.3333...% rounds down at the 4th place.
	up := Valuate(dec(t, "3"), dec(t, "1"), dec(t, "1.3333333333"))
	if !up.ProfitLossPercentage.Equal(dec(t, "33.3333")) {
		t.Fatalf("expected 33.3333, got %s", up.ProfitLossPercentage)
	}

	// Exactly half at the 5th place rounds away from zero.
	half := Valuate(dec(t, "1"), dec(t, "100000"), dec(t, "100000.05"))
	if !half.ProfitLossPercentage.Equal(dec(t, "0.0001")) {
		t.Fatalf("expected 0.0001, got %s", half.ProfitLossPercentage)
	}
}
