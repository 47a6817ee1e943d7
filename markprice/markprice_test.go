package markprice

import (
	"testing"

	"github.com/vela-exchange/perpcore/types"
)

func dec(v int64) types.Dec  { return types.NewDecFromInt64(v) }
func pr(v int64) types.Price { return types.NewPriceUnchecked(dec(v)) }

func TestNewStateSeedsMarkAtIndex(t *testing.T) {
	state := NewState(pr(100))
	if !state.Mark.Value().Equal(dec(100)) {
		t.Errorf("seeded Mark = %s, want 100", state.Mark.Value())
	}
	if !state.SmoothedPremium.IsZero() {
		t.Errorf("seeded SmoothedPremium should be zero")
	}
}

func TestUpdateBlendsAndSmoothsPremium(t *testing.T) {
	params := DefaultParams()
	state := NewState(pr(100))
	mid := pr(105)

	state = Update(state, pr(100), &mid, params)
	// raw premium = (105-100)/100 = 0.05, clamp at max_premium 0.05 -> 0.05
	// smoothed = 0.1*0.05 + 0.9*0 = 0.005
	if state.SmoothedPremium.String() != "0.005000000000000000" {
		t.Errorf("SmoothedPremium = %s, want 0.005", state.SmoothedPremium)
	}
	// mark = 100 * (1 + 0.005) = 100.5
	if state.Mark.Value().String() != "100.500000000000000000" {
		t.Errorf("Mark = %s, want 100.5", state.Mark.Value())
	}
}

func TestUpdateClampsExtremePremium(t *testing.T) {
	params := DefaultParams()
	state := NewState(pr(100))
	mid := pr(200) // raw premium 1.0, far beyond max_premium 0.05

	state = Update(state, pr(100), &mid, params)
	// smoothed = 0.1*0.05 + 0.9*0 = 0.005, same clamp-ceiling as a 5% move
	if state.SmoothedPremium.String() != "0.005000000000000000" {
		t.Errorf("SmoothedPremium = %s, want 0.005 (clamped)", state.SmoothedPremium)
	}
}

func TestUpdateWithoutMidUsesIndexOnly(t *testing.T) {
	params := DefaultParams()
	state := NewState(pr(100))
	state = Update(state, pr(100), nil, params)
	if !state.Mark.Value().Equal(dec(100)) {
		t.Errorf("Mark without a book mid should track index exactly, got %s", state.Mark.Value())
	}
}

func TestBlend(t *testing.T) {
	blended := Blend(pr(100), pr(200), types.NewDecWithPrec(25, 2))
	// 100*0.25 + 200*0.75 = 175
	if blended.Value().String() != "175.000000000000000000" {
		t.Errorf("Blend = %s, want 175", blended.Value())
	}
	full := Blend(pr(100), pr(200), types.OneDec())
	if !full.Value().Equal(dec(100)) {
		t.Errorf("Blend with weight 1 should return index exactly, got %s", full.Value())
	}
}

func TestEstimateImpactPrice(t *testing.T) {
	mark := pr(100)
	depth := types.NewQuote(dec(100_000))
	buy := EstimateImpactPrice(mark, dec(1000), depth, true)
	sell := EstimateImpactPrice(mark, dec(1000), depth, false)
	if !buy.Value().GT(mark.Value()) {
		t.Errorf("a buy should push the impact price above mark, got %s", buy.Value())
	}
	if !sell.Value().LT(mark.Value()) {
		t.Errorf("a sell should push the impact price below mark, got %s", sell.Value())
	}
}
