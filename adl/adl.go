// Package adl implements auto-deleverage candidate ranking and sizing,
// spec.md §4.4, grounded on original_source/src/adl.rs (the Rust crate
// this spec was distilled from) and the teacher's skiplist-ordered book
// (x/orderbook/keeper/orderbook_v2.go), whose comparator/Set/Front idiom
// this package reuses for ranking instead of price levels.
package adl

import (
	"github.com/huandu/skiplist"

	"github.com/vela-exchange/perpcore/types"
)

// Params controls ADL admission and round size, per
// original_source/src/adl.rs::AdlParams.
type Params struct {
	// MinTriggerAmount is the minimum uncovered bad debt that triggers
	// ADL at all.
	MinTriggerAmount types.Quote
	// MaxAccountsPerRound caps how many ranked candidates a single ADL
	// pass may deleverage, per spec.md §4.4 step 4 ("iterate up to
	// max_accounts_per_round candidates").
	MaxAccountsPerRound int
}

// DefaultParams matches original_source/src/adl.rs::AdlParams::default.
func DefaultParams() Params {
	return Params{
		MinTriggerAmount:    types.NewQuote(types.NewDecFromInt64(100)),
		MaxAccountsPerRound: 50,
	}
}

// Candidate is one account's position eligible for ADL consideration
// against the opposite side of a bankrupt position.
type Candidate struct {
	Account    types.AccountId
	Size       types.SignedSize
	Collateral types.Quote
	UnrealizedPnL types.Quote
}

// score ranks ADL candidates by profitability-weighted leverage:
// (pnl / collateral) * leverage, per original_source/src/adl.rs::
// calculate_adl_score. Higher score ranks first. Only profitable
// (pnl > 0) positions on the opposite side are eligible.
func score(c Candidate, leverage types.Dec) types.Dec {
	if !c.Collateral.Value().IsPositive() {
		return types.ZeroDec()
	}
	return c.UnrealizedPnL.Value().Quo(c.Collateral.Value()).Mul(leverage)
}

// rankKey orders candidates by descending score, tie-broken by ascending
// account ID, matching original_source/src/adl.rs's deterministic
// ordering requirement.
type rankKey struct {
	score   types.Dec
	account types.AccountId
}

type rankComparator struct{}

func (rankComparator) Compare(lhs, rhs interface{}) int {
	l := lhs.(rankKey)
	r := rhs.(rankKey)
	if l.score.GT(r.score) {
		return -1
	}
	if l.score.LT(r.score) {
		return 1
	}
	if l.account < r.account {
		return -1
	}
	if l.account > r.account {
		return 1
	}
	return 0
}

func (rankComparator) CalcScore(key interface{}) float64 {
	k := key.(rankKey)
	f, _ := k.score.Float64()
	return -f
}

// RankCandidates filters to opposite-side, profitable positions and
// orders them highest-score first (ties broken by ascending account ID),
// using a skiplist keyed by rankKey for the ordering, per spec.md §4.4.
func RankCandidates(candidates []Candidate, bankruptSide types.Side, leverages map[types.AccountId]types.Dec) []Candidate {
	list := skiplist.New(rankComparator{})
	byKey := make(map[rankKey]Candidate)

	opposite := bankruptSide.Opposite()
	for _, c := range candidates {
		if c.Size.Side() != opposite {
			continue
		}
		if !c.UnrealizedPnL.IsPositive() {
			continue
		}
		lev, ok := leverages[c.Account]
		if !ok {
			lev = types.OneDec()
		}
		key := rankKey{score: score(c, lev), account: c.Account}
		list.Set(key, c)
		byKey[key] = c
	}

	ranked := make([]Candidate, 0, list.Len())
	for elem := list.Front(); elem != nil; elem = elem.Next() {
		ranked = append(ranked, elem.Value.(Candidate))
	}
	return ranked
}

// Deleverage is one candidate's forced reduction against the bankrupt
// position.
type Deleverage struct {
	Account types.AccountId
	Size    types.Dec // magnitude closed from this candidate, always positive
}

// CalculateSizes walks up to params.MaxAccountsPerRound ranked candidates
// in order, closing each only up to the coverable amount
// min(candidate.UnrealizedPnL, remainingDebt) converted to size at mark,
// capped by the candidate's own position size, per
// original_source/src/adl.rs::calculate_adl_sizes. A candidate is never
// deleveraged past what its own profit can cover, so a large but barely
// profitable position is not forced to absorb debt its PnL cannot pay
// for.
func CalculateSizes(ranked []Candidate, remainingDebt types.Quote, mark types.Price, params Params) []Deleverage {
	out := make([]Deleverage, 0, len(ranked))
	left := remainingDebt.Value()

	limit := params.MaxAccountsPerRound
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}

	for _, c := range ranked[:limit] {
		if !left.IsPositive() {
			break
		}
		maxCoverage := types.MinDec(c.UnrealizedPnL.Value(), left)
		if !maxCoverage.IsPositive() {
			continue
		}
		if mark.IsZero() {
			continue
		}
		sizeToClose := maxCoverage.Quo(mark.Value())
		actualSize := types.MinDec(sizeToClose, c.Size.Abs())
		if !actualSize.IsPositive() {
			continue
		}
		out = append(out, Deleverage{Account: c.Account, Size: actualSize})
		left = left.Sub(maxCoverage)
	}
	return out
}

// ShouldTrigger reports whether the insurance fund left part of the
// position's bad debt uncovered, spec.md §4.4. It does not consult
// Params.MinTriggerAmount; the engine checks the uncovered amount against
// that minimum separately before running ADL.
func ShouldTrigger(badDebt types.Quote, coveredByInsurance types.Quote) bool {
	return badDebt.Value().GT(coveredByInsurance.Value())
}
