// Package account implements per-account balance and position bookkeeping,
// grounded on the teacher's x/perpetual/types account/position keeper
// state adapted into a plain in-process record.
package account

import (
	"github.com/vela-exchange/perpcore/position"
	"github.com/vela-exchange/perpcore/types"
)

// Account holds one trader's collateral balance and open positions across
// all markets.
type Account struct {
	ID             types.AccountId
	Balance        types.Quote
	Positions      map[types.MarketId]*position.Position
	TotalDeposited types.Quote
	TotalWithdrawn types.Quote
	RealizedPnL    types.Quote
	CreatedAt      types.Timestamp
}

// New constructs a freshly created account with zero balance.
func New(id types.AccountId, now types.Timestamp) *Account {
	return &Account{
		ID:             id,
		Balance:        types.ZeroQuote(),
		Positions:      make(map[types.MarketId]*position.Position),
		TotalDeposited: types.ZeroQuote(),
		TotalWithdrawn: types.ZeroQuote(),
		RealizedPnL:    types.ZeroQuote(),
		CreatedAt:      now,
	}
}

// Deposit credits amount to the account's free balance.
func (a *Account) Deposit(amount types.Quote) {
	a.Balance = a.Balance.Add(amount)
	a.TotalDeposited = a.TotalDeposited.Add(amount)
}

// Withdraw debits amount from the account's free balance. The caller must
// have already checked that amount does not exceed available (unreserved)
// balance.
func (a *Account) Withdraw(amount types.Quote) {
	a.Balance = a.Balance.Sub(amount)
	a.TotalWithdrawn = a.TotalWithdrawn.Add(amount)
}

// Position returns the account's position in market, or nil if flat.
func (a *Account) Position(market types.MarketId) *position.Position {
	return a.Positions[market]
}

// SetPosition records an updated position, or clears it when pos is nil.
func (a *Account) SetPosition(market types.MarketId, pos *position.Position) {
	if pos == nil {
		delete(a.Positions, market)
		return
	}
	a.Positions[market] = pos
}

// ReservedMargin sums the collateral locked in every open position, i.e.
// the balance unavailable for withdrawal or new orders.
func (a *Account) ReservedMargin() types.Quote {
	total := types.ZeroQuote()
	for _, p := range a.Positions {
		total = total.Add(p.Collateral)
	}
	return total
}

// AvailableBalance is free balance not locked as position collateral.
func (a *Account) AvailableBalance() types.Quote {
	return a.Balance.Sub(a.ReservedMargin())
}

// ApplyRealizedPnL books realized PnL from a fill into both the running
// total and free balance.
func (a *Account) ApplyRealizedPnL(pnl types.Quote) {
	a.RealizedPnL = a.RealizedPnL.Add(pnl)
	a.Balance = a.Balance.Add(pnl)
}
