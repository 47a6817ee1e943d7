// Package risk implements circuit breakers that pause trading under
// extreme conditions, grounded on original_source/src/risk.rs (the Rust
// crate this spec was distilled from) and the teacher's skiplist-ordered
// book structures (x/orderbook/keeper/orderbook_v2.go), whose comparator
// idiom this package reuses to keep the price-history window ordered by
// timestamp for efficient pruning.
package risk

import (
	"github.com/huandu/skiplist"

	"github.com/vela-exchange/perpcore/types"
)

// Params are the immutable per-market risk parameters.
type Params struct {
	MaxPriceDeviation        types.Dec
	PriceWindowMillis        int64
	MaxOpenInterest          types.Quote
	MaxPositionRatio         types.Dec
	InsuranceDepletedThreshold types.Quote
	MaxOracleStalenessMillis int64
	CooldownMillis           int64
}

// DefaultParams matches original_source/src/risk.rs::RiskParams::default.
func DefaultParams() Params {
	return Params{
		MaxPriceDeviation:          types.NewDecWithPrec(15, 2),
		PriceWindowMillis:          60_000,
		MaxOpenInterest:            types.NewQuote(types.NewDecFromInt64(100_000_000)),
		MaxPositionRatio:           types.NewDecWithPrec(1, 1),
		InsuranceDepletedThreshold: types.ZeroQuote(),
		MaxOracleStalenessMillis:   300_000,
		CooldownMillis:             300_000,
	}
}

// Reason identifies why a circuit breaker tripped.
type Reason int8

const (
	ReasonNone Reason = iota
	PriceDeviation
	ExcessiveOpenInterest
	InsuranceFundDepleted
	OracleStale
)

func (r Reason) String() string {
	switch r {
	case PriceDeviation:
		return "price_deviation"
	case ExcessiveOpenInterest:
		return "excessive_open_interest"
	case InsuranceFundDepleted:
		return "insurance_fund_depleted"
	case OracleStale:
		return "oracle_stale"
	default:
		return "none"
	}
}

// timestampKey orders price-history entries ascending by timestamp, with
// ties broken by insertion sequence to keep Set idempotent-free under
// duplicate timestamps.
type timestampKey struct {
	ts  types.Timestamp
	seq uint64
}

type timestampComparator struct{}

func (timestampComparator) Compare(lhs, rhs interface{}) int {
	l := lhs.(timestampKey)
	r := rhs.(timestampKey)
	if l.ts < r.ts {
		return -1
	}
	if l.ts > r.ts {
		return 1
	}
	if l.seq < r.seq {
		return -1
	}
	if l.seq > r.seq {
		return 1
	}
	return 0
}

func (timestampComparator) CalcScore(key interface{}) float64 {
	k := key.(timestampKey)
	return float64(k.ts)
}

// Breaker holds one market's risk monitoring state: a time-ordered price
// history window and the current circuit-breaker trip, if any.
type Breaker struct {
	prices      *skiplist.SkipList
	seq         uint64
	Active      bool
	Reason      Reason
	TriggeredAt types.Timestamp

	CumulativeBadDebt   types.Quote
	LiquidationCount    uint64
	PeakOpenInterest    types.Quote
}

// New constructs an untripped breaker with an empty price history.
func New() *Breaker {
	return &Breaker{
		prices:            skiplist.New(timestampComparator{}),
		CumulativeBadDebt: types.ZeroQuote(),
		PeakOpenInterest:  types.ZeroQuote(),
	}
}

// RecordPrice appends a price observation, prunes entries outside the
// window, and checks for a price-deviation trip. It returns ReasonNone if
// no violation is found.
func (b *Breaker) RecordPrice(price types.Price, now types.Timestamp, params Params) Reason {
	b.seq++
	b.prices.Set(timestampKey{ts: now, seq: b.seq}, price)
	b.pruneOldPrices(now, params.PriceWindowMillis)

	if reason := b.checkPriceDeviation(price, params); reason != ReasonNone {
		return reason
	}
	return ReasonNone
}

func (b *Breaker) pruneOldPrices(now types.Timestamp, windowMillis int64) {
	cutoff := now.Millis() - windowMillis
	for elem := b.prices.Front(); elem != nil; {
		key := elem.Key().(timestampKey)
		if int64(key.ts) >= cutoff {
			break
		}
		next := elem.Next()
		b.prices.Remove(key)
		elem = next
	}
}

func (b *Breaker) checkPriceDeviation(current types.Price, params Params) Reason {
	if b.prices.Len() < 2 {
		return ReasonNone
	}
	oldest := b.prices.Front().Value.(types.Price)
	if oldest.IsZero() {
		return ReasonNone
	}
	deviation := current.Value().Sub(oldest.Value()).Quo(oldest.Value()).Abs()
	if deviation.GT(params.MaxPriceDeviation) {
		return PriceDeviation
	}
	return ReasonNone
}

// CheckOpenInterest returns ExcessiveOpenInterest if currentOI exceeds
// params.MaxOpenInterest, and updates the peak-OI high-water mark.
func (b *Breaker) CheckOpenInterest(currentOI types.Quote, params Params) Reason {
	if currentOI.Value().GT(b.PeakOpenInterest.Value()) {
		b.PeakOpenInterest = currentOI
	}
	if currentOI.Value().GT(params.MaxOpenInterest.Value()) {
		return ExcessiveOpenInterest
	}
	return ReasonNone
}

// CheckInsuranceFund returns InsuranceFundDepleted if balance has fallen
// below params.InsuranceDepletedThreshold.
func (b *Breaker) CheckInsuranceFund(balance types.Quote, params Params) Reason {
	if balance.Value().LT(params.InsuranceDepletedThreshold.Value()) {
		return InsuranceFundDepleted
	}
	return ReasonNone
}

// CheckOracleStaleness returns OracleStale if the index price has not
// been updated within params.MaxOracleStalenessMillis of now.
func (b *Breaker) CheckOracleStaleness(lastUpdate, now types.Timestamp, params Params) Reason {
	if now.Millis()-lastUpdate.Millis() > params.MaxOracleStalenessMillis {
		return OracleStale
	}
	return ReasonNone
}

// RecordLiquidation accumulates bad debt and the liquidation counter for
// this session, per original_source/src/risk.rs::record_liquidation.
func (b *Breaker) RecordLiquidation(badDebt types.Quote) {
	b.LiquidationCount++
	b.CumulativeBadDebt = b.CumulativeBadDebt.Add(badDebt)
}

// Trip activates the breaker for the given reason at the given time.
func (b *Breaker) Trip(reason Reason, now types.Timestamp) {
	b.Active = true
	b.Reason = reason
	b.TriggeredAt = now
}

// CanReset reports whether the cooldown period has elapsed since Trip.
func (b *Breaker) CanReset(now types.Timestamp, params Params) bool {
	if !b.Active {
		return true
	}
	return now.Millis()-b.TriggeredAt.Millis() >= params.CooldownMillis
}

// Reset clears the breaker's tripped state.
func (b *Breaker) Reset() {
	b.Active = false
	b.Reason = ReasonNone
	b.TriggeredAt = 0
}
