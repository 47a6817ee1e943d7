// Package markprice derives the smoothed, clamped mark price from an index
// price and an optional order-book mid, per spec.md §4.5, grounded on
// original_source/src/mark_price.rs (the Rust crate this spec was
// distilled from) and translated into the teacher's Go/decimal idiom.
package markprice

import "github.com/vela-exchange/perpcore/types"

// Params are the immutable per-market mark-price parameters.
type Params struct {
	MaxPremium types.Dec // e.g. 0.05
	EMAAlpha   types.Dec // e.g. 0.1

	// BlendIndexWeight, when positive, blends index and mid before the
	// premium step instead of using mid directly (SPEC_FULL.md §4.5
	// addition, from original_source's blend_prices). Zero disables
	// blending and matches spec.md §4.5 exactly.
	BlendIndexWeight types.Dec
}

// DefaultParams matches spec.md's worked examples: max_premium=0.05,
// ema_alpha=0.1.
func DefaultParams() Params {
	return Params{
		MaxPremium: types.NewDecWithPrec(5, 2),
		EMAAlpha:   types.NewDecWithPrec(1, 1),
	}
}

// State is the mutable per-market mark-price state.
type State struct {
	Mark           types.Price
	SmoothedPremium types.Dec
}

// NewState seeds the state with mark = index and zero premium, as at
// market creation before any order-book mid exists.
func NewState(index types.Price) State {
	return State{Mark: index, SmoothedPremium: types.ZeroDec()}
}

// Update derives the new mark price and smoothed premium from an index
// price and an optional order-book mid, implementing spec.md §4.5 steps
// 1-5 exactly.
func Update(state State, index types.Price, mid *types.Price, params Params) State {
	effectiveMid := index
	if mid != nil {
		effectiveMid = *mid
		if !params.BlendIndexWeight.IsNil() && params.BlendIndexWeight.IsPositive() {
			effectiveMid = Blend(index, *mid, params.BlendIndexWeight)
		}
	}

	rawPremium := effectiveMid.Value().Sub(index.Value()).Quo(index.Value())
	clamped := types.ClampDec(rawPremium, params.MaxPremium.Neg(), params.MaxPremium)
	smoothed := params.EMAAlpha.Mul(clamped).Add(types.OneDec().Sub(params.EMAAlpha).Mul(state.SmoothedPremium))

	markValue := index.Value().Mul(types.OneDec().Add(smoothed))
	return State{
		Mark:            types.NewPriceUnchecked(markValue),
		SmoothedPremium: smoothed,
	}
}

// Blend combines index and mid by index_weight, per
// original_source/src/mark_price.rs::blend_prices (SPEC_FULL.md §4.5
// addition). index_weight in [0, 1]; 1 returns index, 0 returns mid.
func Blend(index, mid types.Price, indexWeight types.Dec) types.Price {
	value := index.Value().Mul(indexWeight).Add(mid.Value().Mul(types.OneDec().Sub(indexWeight)))
	return types.NewPriceUnchecked(value)
}

// EstimateImpactPrice estimates the execution price for an order of the
// given size against liquidityDepth, using a simple linear slippage model,
// per original_source/src/mark_price.rs::estimate_impact_price
// (SPEC_FULL.md §4.5 addition). Informational only — it does not affect
// matching or marking.
func EstimateImpactPrice(mark types.Price, size types.Dec, liquidityDepth types.Quote, isBuy bool) types.Price {
	if liquidityDepth.Value().IsZero() {
		return mark
	}
	notional := size.Abs().Mul(mark.Value())
	impactFraction := notional.Quo(liquidityDepth.Value())
	impact := impactFraction.Mul(types.NewDecWithPrec(1, 3))

	adjustment := types.OneDec().Add(impact)
	if !isBuy {
		adjustment = types.OneDec().Sub(impact)
	}
	return types.NewPriceUnchecked(mark.Value().Mul(adjustment))
}
