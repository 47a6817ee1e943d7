// Package position implements the position algebra of spec.md §4.2:
// weighted-average entry on increase, proportional collateral return and
// realized PnL on reduce, and close-then-open on flip.
package position

import "github.com/vela-exchange/perpcore/types"

// Position is an isolated-margin position in one market for one account.
type Position struct {
	Market            types.MarketId
	Size              types.SignedSize
	Entry             types.Price
	Collateral        types.Quote
	Leverage          types.Leverage
	EntryFundingIndex types.Dec
	RealizedPnL       types.Quote
	OpenedAt          types.Timestamp
	UpdatedAt         types.Timestamp
}

// New constructs a freshly opened position.
func New(market types.MarketId, size types.SignedSize, entry types.Price, collateral types.Quote, leverage types.Leverage, fundingIndex types.Dec, now types.Timestamp) *Position {
	return &Position{
		Market:            market,
		Size:              size,
		Entry:             entry,
		Collateral:        collateral,
		Leverage:          leverage,
		EntryFundingIndex: fundingIndex,
		RealizedPnL:       types.ZeroQuote(),
		OpenedAt:          now,
		UpdatedAt:         now,
	}
}

// IsEmpty reports whether the position has been fully closed.
func (p *Position) IsEmpty() bool {
	return p.Size.IsZero()
}

// UnrealizedPnL at mark m: s * (m - e), spec.md §4.2/§8 invariant 3.
func (p *Position) UnrealizedPnL(mark types.Price) types.Quote {
	return UnrealizedPnL(p.Size, p.Entry, mark)
}

// UnrealizedPnL computes size * (mark - entry) exactly.
func UnrealizedPnL(size types.SignedSize, entry, mark types.Price) types.Quote {
	return types.NewQuote(size.Value().Mul(mark.Value().Sub(entry.Value())))
}

// PendingFunding returns the funding owed (positive) or due (negative)
// since the position's entry funding index, at the market's current
// cumulative funding index.
func (p *Position) PendingFunding(currentFundingIndex types.Dec) types.Quote {
	delta := currentFundingIndex.Sub(p.EntryFundingIndex)
	return types.NewQuote(p.Size.Value().Mul(delta))
}

// Equity at mark m and funding index f: collateral + unrealized_pnl -
// pending_funding, per spec.md §4.2/GLOSSARY.
func (p *Position) Equity(mark types.Price, currentFundingIndex types.Dec) types.Quote {
	pnl := p.UnrealizedPnL(mark)
	funding := p.PendingFunding(currentFundingIndex)
	return types.NewQuote(p.Collateral.Value().Add(pnl.Value()).Sub(funding.Value()))
}

// Notional returns |size| * mark.
func (p *Position) Notional(mark types.Price) types.Quote {
	return types.NewQuote(p.Size.Abs().Mul(mark.Value()))
}

// Side reports the position's direction.
func (p *Position) Side() types.Side {
	return p.Size.Side()
}

// Delta is a same-direction increase or opposite-direction
// reduce/close/flip fill applied to a position.
type Delta struct {
	// Signed size change: positive increases a long / opens a long from
	// flat, negative increases a short / opens a short from flat.
	Size types.Dec
	// Fill price for this delta.
	Price types.Price
	// Additional collateral posted alongside an increase. Zero for a pure
	// reduce.
	AdditionalCollateral types.Quote
	// Funding index at the moment of the fill, used to weight-average the
	// position's entry_funding_index on an increase and to settle pending
	// funding on the closed portion of a reduce.
	FundingIndex types.Dec
	// Leverage recorded on a freshly opened position, whether opened from
	// flat or by a flip onto the opposite side.
	FlipLeverage types.Leverage
}

// Outcome is the result of applying a Delta to a Position.
type Outcome struct {
	// Updated is nil when the position was fully closed (and not flipped).
	Updated *Position
	// RealizedPnL booked on the closed portion of this delta, zero for a
	// pure increase.
	RealizedPnL types.Quote
	// CollateralReturned is credited back to the account balance (from
	// the closed fraction of collateral, net of pending funding settled).
	CollateralReturned types.Quote
	// CollateralRequired is collateral that must be reserved from the
	// account balance for an increase or a flip's fresh open. Zero for a
	// pure reduce.
	CollateralRequired types.Quote
	// Closed is true if the pre-delta position was fully closed (full
	// close or flip) as part of this apply.
	Closed bool
	// Opened is true if a new position (from flat, or from a flip) was
	// opened as part of this apply.
	Opened bool
}

// Apply applies delta to position (which may be nil, meaning flat) and
// returns the resulting outcome, implementing every case of spec.md §4.2:
// increase, partial reduce, full close, and flip.
func Apply(p *Position, market types.MarketId, d Delta, now types.Timestamp) Outcome {
	if p == nil || p.IsEmpty() {
		opened := New(market, types.NewSignedSize(d.Size), d.Price, d.AdditionalCollateral, d.FlipLeverage, d.FundingIndex, now)
		return Outcome{
			Updated:            opened,
			CollateralRequired: d.AdditionalCollateral,
			Opened:             true,
		}
	}

	sameDirection := (d.Size.IsPositive() && p.Size.IsLong()) || (d.Size.IsNegative() && p.Size.IsShort())
	if sameDirection {
		return applyIncrease(p, d, now)
	}

	oldAbs := p.Size.Abs()
	deltaAbs := d.Size.Abs()

	switch {
	case deltaAbs.LT(oldAbs):
		return applyPartialReduce(p, d, now)
	case deltaAbs.Equal(oldAbs):
		return applyFullClose(p, d, now)
	default:
		return applyFlip(p, market, d, now)
	}
}

func applyIncrease(p *Position, d Delta, now types.Timestamp) Outcome {
	oldAbs := p.Size.Abs()
	newSizeVal := p.Size.Value().Add(d.Size)
	newAbs := newSizeVal.Abs()

	newEntry := p.Entry
	if newAbs.IsPositive() {
		weighted := oldAbs.Mul(p.Entry.Value()).Add(d.Size.Abs().Mul(d.Price.Value()))
		newEntry = types.NewPriceUnchecked(weighted.Quo(newAbs))
	}

	newFundingIndex := p.EntryFundingIndex
	if newAbs.IsPositive() {
		oldWeight := oldAbs.Quo(newAbs)
		newWeight := d.Size.Abs().Quo(newAbs)
		newFundingIndex = oldWeight.Mul(p.EntryFundingIndex).Add(newWeight.Mul(d.FundingIndex))
	}

	updated := &Position{
		Market:            p.Market,
		Size:              types.NewSignedSize(newSizeVal),
		Entry:             newEntry,
		Collateral:        p.Collateral.Add(d.AdditionalCollateral),
		Leverage:          p.Leverage,
		EntryFundingIndex: newFundingIndex,
		RealizedPnL:       p.RealizedPnL,
		OpenedAt:          p.OpenedAt,
		UpdatedAt:         now,
	}
	return Outcome{
		Updated:            updated,
		CollateralRequired: d.AdditionalCollateral,
	}
}

func applyPartialReduce(p *Position, d Delta, now types.Timestamp) Outcome {
	oldAbs := p.Size.Abs()
	closeAbs := d.Size.Abs()
	fraction := closeAbs.Quo(oldAbs)

	sign := types.OneDec()
	if p.Size.IsShort() {
		sign = sign.Neg()
	}
	realized := types.NewQuote(sign.Mul(closeAbs).Mul(d.Price.Value().Sub(p.Entry.Value())))

	collateralReturned := types.NewQuote(p.Collateral.Value().Mul(fraction))
	pendingFundingOnClosed := types.NewQuote(types.SignedFor(p.Size.Side(), closeAbs).Mul(d.FundingIndex.Sub(p.EntryFundingIndex)))
	netReturned := collateralReturned.Sub(pendingFundingOnClosed)

	newSizeVal := p.Size.Value().Add(d.Size)
	updated := &Position{
		Market:            p.Market,
		Size:              types.NewSignedSize(newSizeVal),
		Entry:             p.Entry,
		Collateral:        types.NewQuote(p.Collateral.Value().Mul(types.OneDec().Sub(fraction))),
		Leverage:          p.Leverage,
		EntryFundingIndex: d.FundingIndex,
		RealizedPnL:       p.RealizedPnL.Add(realized),
		OpenedAt:          p.OpenedAt,
		UpdatedAt:         now,
	}
	return Outcome{
		Updated:            updated,
		RealizedPnL:        realized,
		CollateralReturned: netReturned,
	}
}

func applyFullClose(p *Position, d Delta, now types.Timestamp) Outcome {
	sign := types.OneDec()
	if p.Size.IsShort() {
		sign = sign.Neg()
	}
	closeAbs := p.Size.Abs()
	realized := types.NewQuote(sign.Mul(closeAbs).Mul(d.Price.Value().Sub(p.Entry.Value())))
	pendingFunding := p.PendingFunding(d.FundingIndex)
	netReturned := p.Collateral.Sub(pendingFunding)

	_ = now
	return Outcome{
		Updated:            nil,
		RealizedPnL:        realized,
		CollateralReturned: netReturned,
		Closed:             true,
	}
}

func applyFlip(p *Position, market types.MarketId, d Delta, now types.Timestamp) Outcome {
	closeDelta := Delta{
		Size:         types.SignedFor(p.Size.Side(), p.Size.Abs()).Neg(),
		Price:        d.Price,
		FundingIndex: d.FundingIndex,
	}
	closeOutcome := applyFullClose(p, closeDelta, now)

	remainderAbs := d.Size.Abs().Sub(p.Size.Abs())
	openSide := types.Long
	if d.Size.IsNegative() {
		openSide = types.Short
	}
	openSize := types.SignedFor(openSide, remainderAbs)

	opened := New(market, types.NewSignedSize(openSize), d.Price, d.AdditionalCollateral, d.FlipLeverage, d.FundingIndex, now)

	return Outcome{
		Updated:            opened,
		RealizedPnL:        closeOutcome.RealizedPnL,
		CollateralReturned: closeOutcome.CollateralReturned,
		CollateralRequired: d.AdditionalCollateral,
		Closed:             true,
		Opened:             true,
	}
}
