// Package insurance implements the insurance fund of spec.md §4.3/§4.4:
// it absorbs liquidation penalty contributions and covers bad debt left
// behind by bankrupt positions before ADL is triggered, grounded on the
// teacher's x/clearinghouse/keeper/insurance.go.
package insurance

import "github.com/vela-exchange/perpcore/types"

// Fund is the single shared insurance fund balance.
type Fund struct {
	Balance       types.Quote
	TotalDeposits types.Quote
	TotalPayouts  types.Quote
}

// New constructs an empty insurance fund.
func New() *Fund {
	return &Fund{
		Balance:       types.ZeroQuote(),
		TotalDeposits: types.ZeroQuote(),
		TotalPayouts:  types.ZeroQuote(),
	}
}

// Deposit credits amount to the fund, from liquidation penalty
// contributions or direct funding.
func (f *Fund) Deposit(amount types.Quote) {
	if !amount.IsPositive() {
		return
	}
	f.Balance = f.Balance.Add(amount)
	f.TotalDeposits = f.TotalDeposits.Add(amount)
}

// CoverBadDebt draws up to amount from the fund to cover a bankrupt
// position's shortfall, returning the amount actually covered
// (min(balance, amount)). The uncovered remainder is the caller's
// signal to trigger ADL, spec.md §4.4.
func (f *Fund) CoverBadDebt(amount types.Quote) types.Quote {
	if !amount.IsPositive() {
		return types.ZeroQuote()
	}
	covered := types.NewQuote(types.MinDec(f.Balance.Value(), amount.Value()))
	f.Balance = f.Balance.Sub(covered)
	f.TotalPayouts = f.TotalPayouts.Add(covered)
	return covered
}

// IsDepleted reports whether the fund has been drawn down to zero.
func (f *Fund) IsDepleted() bool {
	return f.Balance.Value().IsZero()
}
