package adl

import (
	"testing"

	"github.com/vela-exchange/perpcore/types"
)

func dec(v int64) types.Dec    { return types.NewDecFromInt64(v) }
func quote(v int64) types.Quote { return types.NewQuote(dec(v)) }
func pr(v int64) types.Price   { return types.NewPriceUnchecked(dec(v)) }

func TestRankCandidatesFiltersToOppositeSideAndProfitable(t *testing.T) {
	candidates := []Candidate{
		{Account: 1, Size: types.NewSignedSize(dec(10)), Collateral: quote(100), UnrealizedPnL: quote(50)},  // long, profitable
		{Account: 2, Size: types.NewSignedSize(dec(-10)), Collateral: quote(100), UnrealizedPnL: quote(50)}, // short, wrong side
		{Account: 3, Size: types.NewSignedSize(dec(5)), Collateral: quote(100), UnrealizedPnL: quote(-10)},  // long, unprofitable
	}
	leverages := map[types.AccountId]types.Dec{1: dec(10), 3: dec(10)}

	ranked := RankCandidates(candidates, types.Short, leverages) // bankrupt short -> opposite is long
	if len(ranked) != 1 {
		t.Fatalf("expected exactly 1 eligible candidate, got %d", len(ranked))
	}
	if ranked[0].Account != 1 {
		t.Errorf("ranked[0].Account = %d, want 1", ranked[0].Account)
	}
}

func TestRankCandidatesOrdersByDescendingScore(t *testing.T) {
	candidates := []Candidate{
		{Account: 1, Size: types.NewSignedSize(dec(10)), Collateral: quote(100), UnrealizedPnL: quote(10)}, // score low
		{Account: 2, Size: types.NewSignedSize(dec(10)), Collateral: quote(100), UnrealizedPnL: quote(90)}, // score high
	}
	leverages := map[types.AccountId]types.Dec{1: dec(10), 2: dec(10)}

	ranked := RankCandidates(candidates, types.Short, leverages)
	if len(ranked) != 2 || ranked[0].Account != 2 || ranked[1].Account != 1 {
		t.Fatalf("expected highest-score candidate first, got order %v", ranked)
	}
}

func TestRankCandidatesTieBreaksByAscendingAccount(t *testing.T) {
	candidates := []Candidate{
		{Account: 5, Size: types.NewSignedSize(dec(10)), Collateral: quote(100), UnrealizedPnL: quote(50)},
		{Account: 2, Size: types.NewSignedSize(dec(10)), Collateral: quote(100), UnrealizedPnL: quote(50)},
	}
	leverages := map[types.AccountId]types.Dec{5: dec(10), 2: dec(10)}

	ranked := RankCandidates(candidates, types.Short, leverages)
	if len(ranked) != 2 || ranked[0].Account != 2 || ranked[1].Account != 5 {
		t.Fatalf("tied scores should break ascending by account id, got %v", ranked)
	}
}

func TestCalculateSizesClosesUntilDebtExhausted(t *testing.T) {
	ranked := []Candidate{
		{Account: 1, Size: types.NewSignedSize(dec(3)), UnrealizedPnL: quote(3)},
		{Account: 2, Size: types.NewSignedSize(dec(10)), UnrealizedPnL: quote(10)},
	}
	deleverages := CalculateSizes(ranked, quote(5), pr(1), DefaultParams())
	if len(deleverages) != 2 {
		t.Fatalf("expected 2 deleverages, got %d", len(deleverages))
	}
	if !deleverages[0].Size.Equal(dec(3)) {
		t.Errorf("first candidate should close fully (3), got %s", deleverages[0].Size)
	}
	if !deleverages[1].Size.Equal(dec(2)) {
		t.Errorf("second candidate should close only the remaining 2, got %s", deleverages[1].Size)
	}
}

func TestCalculateSizesStopsOnceSatisfied(t *testing.T) {
	ranked := []Candidate{
		{Account: 1, Size: types.NewSignedSize(dec(10)), UnrealizedPnL: quote(10)},
		{Account: 2, Size: types.NewSignedSize(dec(10)), UnrealizedPnL: quote(10)},
	}
	deleverages := CalculateSizes(ranked, quote(4), pr(1), DefaultParams())
	if len(deleverages) != 1 {
		t.Fatalf("expected only 1 deleverage once debt is exhausted, got %d", len(deleverages))
	}
}

func TestCalculateSizesCapsByCandidateUnrealizedPnL(t *testing.T) {
	// A large position with only a small profit must not be forced to
	// absorb more debt than its own PnL can cover, spec.md §4.4 step 4.
	ranked := []Candidate{
		{Account: 1, Size: types.NewSignedSize(dec(100)), UnrealizedPnL: quote(2)},
	}
	deleverages := CalculateSizes(ranked, quote(50), pr(1), DefaultParams())
	if len(deleverages) != 1 {
		t.Fatalf("expected 1 deleverage, got %d", len(deleverages))
	}
	if !deleverages[0].Size.Equal(dec(2)) {
		t.Errorf("size closed should be capped by unrealized PnL / mark (2), got %s", deleverages[0].Size)
	}
}

func TestCalculateSizesEnforcesMaxAccountsPerRound(t *testing.T) {
	ranked := []Candidate{
		{Account: 1, Size: types.NewSignedSize(dec(10)), UnrealizedPnL: quote(10)},
		{Account: 2, Size: types.NewSignedSize(dec(10)), UnrealizedPnL: quote(10)},
		{Account: 3, Size: types.NewSignedSize(dec(10)), UnrealizedPnL: quote(10)},
	}
	params := Params{MinTriggerAmount: quote(0), MaxAccountsPerRound: 2}
	deleverages := CalculateSizes(ranked, quote(100), pr(1), params)
	if len(deleverages) != 2 {
		t.Fatalf("expected the round capped at 2 accounts, got %d", len(deleverages))
	}
}

func TestShouldTrigger(t *testing.T) {
	if ShouldTrigger(quote(100), quote(100)) {
		t.Errorf("fully covered bad debt should not trigger ADL")
	}
	if !ShouldTrigger(quote(100), quote(60)) {
		t.Errorf("partially covered bad debt should trigger ADL")
	}
}
