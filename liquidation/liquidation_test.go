package liquidation

import (
	"testing"

	"github.com/vela-exchange/perpcore/margin"
	"github.com/vela-exchange/perpcore/types"
)

func dec(v int64) types.Dec  { return types.NewDecFromInt64(v) }
func pr(v int64) types.Price { return types.NewPriceUnchecked(dec(v)) }

func req(notional, maintenance int64) margin.Requirement {
	return margin.Requirement{
		Notional:          dec(notional),
		EffectiveLeverage: types.NewLeverageUnchecked(dec(10)),
		Initial:           types.NewQuote(dec(notional / 10)),
		Maintenance:       types.NewQuote(dec(maintenance)),
	}
}

func TestEvaluateBankruptWhenEquityNegative(t *testing.T) {
	eval := Evaluate(types.NewQuote(dec(-50)), req(1000, 50), pr(100), types.Long)
	if eval.Status != Bankrupt {
		t.Fatalf("Status = %v, want Bankrupt", eval.Status)
	}
	if eval.BadDebt.Value().String() != "50.000000000000000000" {
		t.Errorf("BadDebt = %s, want 50", eval.BadDebt.Value())
	}
}

func TestEvaluateLiquidatableBelowMaintenance(t *testing.T) {
	eval := Evaluate(types.NewQuote(dec(30)), req(1000, 50), pr(100), types.Long)
	if eval.Status != Liquidatable {
		t.Fatalf("Status = %v, want Liquidatable", eval.Status)
	}
	if eval.Shortfall.Value().String() != "20.000000000000000000" {
		t.Errorf("Shortfall = %s, want 20", eval.Shortfall.Value())
	}
}

func TestEvaluateAtRiskNearMaintenance(t *testing.T) {
	// 1.2*maintenance(50) = 60; equity 55 sits between maintenance and that buffer.
	eval := Evaluate(types.NewQuote(dec(55)), req(1000, 50), pr(100), types.Long)
	if eval.Status != AtRisk {
		t.Fatalf("Status = %v, want AtRisk", eval.Status)
	}
}

func TestEvaluateSafeWellAboveMaintenance(t *testing.T) {
	eval := Evaluate(types.NewQuote(dec(500)), req(1000, 50), pr(100), types.Long)
	if eval.Status != Safe {
		t.Fatalf("Status = %v, want Safe", eval.Status)
	}
}

func TestPriceFromEntryLongBelowEntryShortAboveEntry(t *testing.T) {
	longLiq := PriceFromEntry(pr(100), types.NewLeverageUnchecked(dec(10)), types.Long, dec(0))
	if !longLiq.Value().LT(dec(100)) {
		t.Errorf("a long's liquidation price should sit below entry, got %s", longLiq.Value())
	}
	shortLiq := PriceFromEntry(pr(100), types.NewLeverageUnchecked(dec(10)), types.Short, dec(0))
	if !shortLiq.Value().GT(dec(100)) {
		t.Errorf("a short's liquidation price should sit above entry, got %s", shortLiq.Value())
	}
}

func TestPriceFromEntryHigherLeverageIsCloserToEntry(t *testing.T) {
	low := PriceFromEntry(pr(100), types.NewLeverageUnchecked(dec(2)), types.Long, dec(0))
	high := PriceFromEntry(pr(100), types.NewLeverageUnchecked(dec(20)), types.Long, dec(0))
	if !high.Value().GT(low.Value()) {
		t.Errorf("higher leverage should push a long's liquidation price closer to entry: low=%s high=%s", low.Value(), high.Value())
	}
}

func TestPriceFromMarginLong(t *testing.T) {
	size := types.NewSignedSize(dec(10))
	liq, ok := PriceFromMargin(size, pr(100), types.NewQuote(dec(200)), types.ZeroDec())
	if !ok {
		t.Fatalf("expected a defined liquidation price")
	}
	// (10*100 - 200) / (10*(1-0)) = 80
	if liq.Value().String() != "80.000000000000000000" {
		t.Errorf("liq price = %s, want 80", liq.Value())
	}
}

func TestPriceFromMarginUndefinedOnZeroSize(t *testing.T) {
	_, ok := PriceFromMargin(types.ZeroSize(), pr(100), types.NewQuote(dec(200)), types.ZeroDec())
	if ok {
		t.Errorf("PriceFromMargin on a flat position should be undefined")
	}
}

func TestComputePenaltySplitsBetweenLiquidatorAndInsurance(t *testing.T) {
	penalty := ComputePenalty(dec(10_000), DefaultParams())
	if penalty.Total.Value().String() != "100.000000000000000000" {
		t.Errorf("Total = %s, want 100 (1%% of 10000)", penalty.Total.Value())
	}
	if penalty.LiquidatorReward.Value().String() != "50.000000000000000000" {
		t.Errorf("LiquidatorReward = %s, want 50 (50%% share)", penalty.LiquidatorReward.Value())
	}
	sum := penalty.LiquidatorReward.Add(penalty.InsuranceContribution)
	if !sum.Value().Equal(penalty.Total.Value()) {
		t.Errorf("liquidator reward + insurance contribution must equal total, got %s", sum.Value())
	}
}
