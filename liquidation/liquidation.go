// Package liquidation implements liquidation status evaluation, the two
// informational liquidation-price formulas, and penalty distribution of
// spec.md §4.3, grounded on original_source/src/liquidation.rs (the Rust
// crate this spec was distilled from).
package liquidation

import (
	"github.com/vela-exchange/perpcore/margin"
	"github.com/vela-exchange/perpcore/types"
)

// Params are the immutable liquidation parameters.
type Params struct {
	PenaltyRate     types.Dec
	LiquidatorShare types.Dec
}

// DefaultParams matches spec.md's worked examples: penalty_rate=0.01,
// liquidator_share=0.5.
func DefaultParams() Params {
	return Params{
		PenaltyRate:     types.NewDecWithPrec(1, 2),
		LiquidatorShare: types.NewDecWithPrec(5, 1),
	}
}

// Status is the liquidation status of a position, per spec.md §4.3.
type Status int8

const (
	Safe Status = iota
	AtRisk
	Liquidatable
	Bankrupt
)

func (s Status) String() string {
	switch s {
	case AtRisk:
		return "at_risk"
	case Liquidatable:
		return "liquidatable"
	case Bankrupt:
		return "bankrupt"
	default:
		return "safe"
	}
}

// Evaluation is the full result of evaluating a position's liquidation
// status.
type Evaluation struct {
	Status          Status
	BadDebt         types.Quote // set when Status == Bankrupt
	Shortfall       types.Quote // set when Status == Liquidatable
	BufferPercent   types.Dec   // set when Status == AtRisk
	LiquidationPrice types.Price
}

// Evaluate classifies a position's liquidation status from its equity,
// margin requirement, notional, entry, and side, per spec.md §4.3:
// Bankrupt if equity < 0, Liquidatable if equity < maintenance, AtRisk if
// equity < 1.2*maintenance, else Safe.
func Evaluate(equity types.Quote, req margin.Requirement, entry types.Price, side types.Side) Evaluation {
	mmf := types.ZeroDec()
	if req.Notional.IsPositive() {
		mmf = req.Maintenance.Value().Quo(req.Notional)
	}
	liqPrice := PriceFromEntry(entry, req.EffectiveLeverage, side, mmf)

	if equity.IsNegative() {
		return Evaluation{Status: Bankrupt, BadDebt: types.NewQuote(equity.Value().Abs()), LiquidationPrice: liqPrice}
	}

	if equity.Value().LT(req.Maintenance.Value()) {
		shortfall := types.NewQuote(req.Maintenance.Value().Sub(equity.Value()))
		return Evaluation{Status: Liquidatable, Shortfall: shortfall, LiquidationPrice: liqPrice}
	}

	riskThreshold := req.Maintenance.Value().Mul(types.NewDecWithPrec(12, 1))
	if equity.Value().LT(riskThreshold) {
		buffer := equity.Value().Sub(req.Maintenance.Value()).Quo(req.Maintenance.Value()).MulInt64(100)
		return Evaluation{Status: AtRisk, BufferPercent: buffer, LiquidationPrice: liqPrice}
	}

	return Evaluation{Status: Safe, LiquidationPrice: liqPrice}
}

// epsilon is the floor applied to the informational liquidation price so
// it is never zero or negative.
var epsilon = types.NewDecWithPrec(1, 4)

// PriceFromEntry is the entry/leverage/mmf-based informational liquidation
// price: Long: entry*(1 - 1/L + mmf); Short: entry*(1 + 1/L - mmf).
// Per spec.md §9 Open Questions this is advisory only — the actual
// liquidation trigger is Evaluate's equity-vs-maintenance comparison, never
// this display price.
func PriceFromEntry(entry types.Price, leverage types.Leverage, side types.Side, mmf types.Dec) types.Price {
	imf := leverage.InitialMarginFraction()
	var value types.Dec
	if side == types.Long {
		value = entry.Value().Mul(types.OneDec().Sub(imf).Add(mmf))
	} else {
		value = entry.Value().Mul(types.OneDec().Add(imf).Sub(mmf))
	}
	return types.NewPriceUnchecked(types.MaxDec(value, epsilon))
}

// PriceFromMargin is the collateral-based informational liquidation price
// alternative from original_source/src/liquidation.rs::
// liquidation_price_from_margin (SPEC_FULL.md §4.3 addition). Returns
// false when the formula is undefined (zero size, non-positive
// denominator, or a non-positive result).
func PriceFromMargin(size types.SignedSize, entry types.Price, collateral types.Quote, mmf types.Dec) (types.Price, bool) {
	if size.IsZero() {
		return types.Price{}, false
	}
	absSize := size.Abs()
	entryValue := absSize.Mul(entry.Value())

	var liqPrice types.Dec
	if size.IsLong() {
		numerator := entryValue.Sub(collateral.Value())
		denominator := absSize.Mul(types.OneDec().Sub(mmf))
		if !denominator.IsPositive() {
			return types.Price{}, false
		}
		liqPrice = numerator.Quo(denominator)
	} else {
		numerator := entryValue.Add(collateral.Value())
		denominator := absSize.Mul(types.OneDec().Add(mmf))
		if denominator.IsZero() {
			return types.Price{}, false
		}
		liqPrice = numerator.Quo(denominator)
	}

	if !liqPrice.IsPositive() {
		return types.Price{}, false
	}
	return types.NewPriceUnchecked(liqPrice), true
}

// Penalty is the result of distributing a liquidation penalty between the
// liquidator and the insurance fund, spec.md §4.3.
type Penalty struct {
	Total                types.Quote
	LiquidatorReward     types.Quote
	InsuranceContribution types.Quote
}

// ComputePenalty splits penalty_rate * notional between the liquidator and
// the insurance fund per liquidator_share.
func ComputePenalty(notional types.Dec, params Params) Penalty {
	total := types.NewQuote(notional.Mul(params.PenaltyRate))
	liquidatorReward := types.NewQuote(total.Value().Mul(params.LiquidatorShare))
	insuranceContribution := total.Sub(liquidatorReward)
	return Penalty{
		Total:                 total,
		LiquidatorReward:      liquidatorReward,
		InsuranceContribution: insuranceContribution,
	}
}
