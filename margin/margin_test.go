package margin

import (
	"testing"

	"github.com/vela-exchange/perpcore/types"
)

func dec(v int64) types.Dec  { return types.NewDecFromInt64(v) }
func pr(v int64) types.Price { return types.NewPriceUnchecked(dec(v)) }

func tieredConfig() Config {
	return Config{
		Tiers: []Tier{
			{MaxNotional: dec(10_000), MaxLeverage: dec(20)},
			{MaxNotional: dec(50_000), MaxLeverage: dec(10)},
			{MaxNotional: dec(1_000_000), MaxLeverage: dec(5)},
		},
		MMRatio: types.NewDecWithPrec(5, 1), // 0.5
	}
}

func TestComputeUsesRequestedLeverageBelowTierCap(t *testing.T) {
	req := Compute(tieredConfig(), dec(10), pr(100), types.NewLeverageUnchecked(dec(5)))
	// notional = 1000, well within first tier's cap (20x); requested 5x is used.
	if req.EffectiveLeverage.Value().String() != "5.000000000000000000" {
		t.Errorf("EffectiveLeverage = %s, want 5", req.EffectiveLeverage.Value())
	}
	if req.Initial.Value().String() != "200.000000000000000000" {
		t.Errorf("Initial = %s, want 200 (1000/5)", req.Initial.Value())
	}
	if req.Maintenance.Value().String() != "100.000000000000000000" {
		t.Errorf("Maintenance = %s, want 100 (200*0.5)", req.Maintenance.Value())
	}
}

func TestComputeCapsLeverageAtNotionalTier(t *testing.T) {
	// notional = 100 * 600 = 60,000, which falls in the third tier (cap 5x).
	req := Compute(tieredConfig(), dec(600), pr(100), types.NewLeverageUnchecked(dec(20)))
	if req.EffectiveLeverage.Value().String() != "5.000000000000000000" {
		t.Errorf("EffectiveLeverage = %s, want tier cap 5", req.EffectiveLeverage.Value())
	}
}

func TestEvaluateStatus(t *testing.T) {
	req := Compute(tieredConfig(), dec(10), pr(100), types.NewLeverageUnchecked(dec(5)))
	tests := []struct {
		name   string
		equity types.Quote
		want   Status
	}{
		{"equity above initial is healthy", types.NewQuote(dec(300)), Healthy},
		{"equity between maintenance and initial is warning", types.NewQuote(dec(150)), Warning},
		{"equity below maintenance is liquidatable", types.NewQuote(dec(50)), Liquidatable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateStatus(tt.equity, req)
			if got != tt.want {
				t.Errorf("EvaluateStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
