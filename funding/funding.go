// Package funding implements the periodic funding settlement of
// spec.md §4.6: premium -> dampened/clamped rate -> pro-rated payment ->
// zero-sum balance transfer, grounded on
// original_source/src/funding.rs and the teacher's
// x/perpetual/keeper/funding.go.
package funding

import "github.com/vela-exchange/perpcore/types"

// Params are the immutable per-market funding parameters.
type Params struct {
	MaxRate         types.Dec
	InterestRate    types.Dec
	PeriodHours     types.Dec
	DampeningFactor types.Dec
	// LPFeeFraction is the fraction of gross receiver-side funding routed
	// to a pool accumulator instead of credited to receivers, per
	// spec.md §4.6 step 6. 0 makes funding exactly zero-sum (spec.md §8
	// invariant 7); original_source/src/funding.rs defaults this to 0.10
	// (SPEC_FULL.md §4.6).
	LPFeeFraction types.Dec
}

// DefaultParams matches spec.md's worked examples (max_rate=0.01,
// interest=0.0001, period=8h, dampening=0.5) with the original source's
// default 10% LP fee fraction; SPEC_FULL.md notes the zero-sum scenarios
// use lp_fee_fraction=0 explicitly.
func DefaultParams() Params {
	return Params{
		MaxRate:         types.NewDecWithPrec(1, 2),
		InterestRate:    types.NewDecWithPrec(1, 4),
		PeriodHours:     types.NewDecFromInt64(8),
		DampeningFactor: types.NewDecWithPrec(5, 1),
		LPFeeFraction:   types.NewDecWithPrec(10, 2),
	}
}

// State is the mutable per-market funding state.
type State struct {
	CurrentRate      types.Dec
	CumulativeFunding types.Dec
	LastUpdate       types.Timestamp
}

// NewState seeds funding state at market creation.
func NewState(now types.Timestamp) State {
	return State{
		CurrentRate:       types.ZeroDec(),
		CumulativeFunding: types.ZeroDec(),
		LastUpdate:        now,
	}
}

// Premium returns (mark - index) / index, spec.md §4.6 step 2.
func Premium(mark, index types.Price) types.Dec {
	return mark.Value().Sub(index.Value()).Quo(index.Value())
}

// InstantRate dampens and clamps the premium into a funding rate, spec.md
// §4.6 step 3.
func InstantRate(premium types.Dec, params Params) types.Dec {
	rate := premium.Mul(params.DampeningFactor).Add(params.InterestRate)
	return types.ClampDec(rate, params.MaxRate.Neg(), params.MaxRate)
}

// ProratedRate scales instantRate by the fraction of the period elapsed,
// spec.md §4.6 step 4.
func ProratedRate(instantRate types.Dec, elapsed types.Timestamp, now types.Timestamp, params Params) types.Dec {
	elapsedHours := elapsed.ElapsedHours(now)
	timeFraction := elapsedHours.Quo(params.PeriodHours)
	return instantRate.Mul(timeFraction)
}

// PositionPayment is a single account's gross funding obligation for this
// settlement, before the LP-fee split on the receiver side.
type PositionPayment struct {
	Account types.AccountId
	Size    types.SignedSize
	Gross   types.Quote // positive = owed (pays), negative = due (receives)
}

// GrossPayment computes size * mark * prorated_rate, spec.md §4.6 step 5.
func GrossPayment(size types.SignedSize, mark types.Price, proratedRate types.Dec) types.Quote {
	return types.NewQuote(size.Value().Mul(mark.Value()).Mul(proratedRate))
}

// Adjusted is the result of applying the LP-fee split to one account's
// gross payment, spec.md §4.6 step 6-7.
type Adjusted struct {
	Account   types.AccountId
	Payment   types.Quote // amount actually debited (positive) or credited (negative) before zero-clamping
}

// ApplyLPFeeSplit implements spec.md §4.6 steps 6-7: payers pay their full
// gross amount; receivers receive gross * (1 - lp_fee_fraction); the
// uncredited remainder (gross_receiver_total * lp_fee_fraction) is
// returned separately as the pool contribution.
func ApplyLPFeeSplit(payments []PositionPayment, lpFeeFraction types.Dec) (adjusted []Adjusted, lpFee types.Quote) {
	adjusted = make([]Adjusted, 0, len(payments))
	for _, p := range payments {
		if p.Gross.IsNegative() {
			receiverAmount := p.Gross.Value().Mul(types.OneDec().Sub(lpFeeFraction))
			adjusted = append(adjusted, Adjusted{Account: p.Account, Payment: types.NewQuote(receiverAmount)})
		} else {
			adjusted = append(adjusted, Adjusted{Account: p.Account, Payment: p.Gross})
		}
	}

	grossReceiverTotal := types.ZeroDec()
	for _, p := range payments {
		if p.Gross.IsNegative() {
			grossReceiverTotal = grossReceiverTotal.Add(p.Gross.Value().Abs())
		}
	}
	lpFee = types.NewQuote(grossReceiverTotal.Mul(lpFeeFraction))
	return adjusted, lpFee
}

// Advance produces the new funding state after one settlement, spec.md
// §4.6 step 9.
func Advance(state State, proratedRate types.Dec, now types.Timestamp) State {
	return State{
		CurrentRate:       proratedRate,
		CumulativeFunding: state.CumulativeFunding.Add(proratedRate),
		LastUpdate:        now,
	}
}

// AnnualizedRate converts a per-settlement-period rate to an annualized
// rate assuming 3 periods/day * 365 days, per
// original_source/src/funding.rs::annualized_funding_rate (SPEC_FULL.md
// §4.6 addition). Informational only.
func AnnualizedRate(periodRate types.Dec) types.Dec {
	return periodRate.Mul(types.NewDecFromInt64(1095))
}

// PeriodRate converts an annual rate into a per-period rate given the
// number of settlement periods per year (SPEC_FULL.md §4.6 addition).
func PeriodRate(annualRate types.Dec, periodsPerYear int64) types.Dec {
	return annualRate.QuoInt64(periodsPerYear)
}
