package insurance

import (
	"testing"

	"github.com/vela-exchange/perpcore/types"
)

func dec(v int64) types.Dec { return types.NewDecFromInt64(v) }

func TestDepositAccumulates(t *testing.T) {
	f := New()
	f.Deposit(types.NewQuote(dec(100)))
	f.Deposit(types.NewQuote(dec(50)))
	if f.Balance.Value().String() != "150.000000000000000000" {
		t.Errorf("Balance = %s, want 150", f.Balance.Value())
	}
	if f.TotalDeposits.Value().String() != "150.000000000000000000" {
		t.Errorf("TotalDeposits = %s, want 150", f.TotalDeposits.Value())
	}
}

func TestDepositIgnoresNonPositive(t *testing.T) {
	f := New()
	f.Deposit(types.ZeroQuote())
	f.Deposit(types.NewQuote(dec(-5)))
	if !f.Balance.IsZero() {
		t.Errorf("Balance should stay zero, got %s", f.Balance.Value())
	}
}

func TestCoverBadDebtClampsToBalance(t *testing.T) {
	f := New()
	f.Deposit(types.NewQuote(dec(100)))

	covered := f.CoverBadDebt(types.NewQuote(dec(150)))
	if covered.Value().String() != "100.000000000000000000" {
		t.Errorf("covered = %s, want 100 (clamped to balance)", covered.Value())
	}
	if !f.Balance.IsZero() {
		t.Errorf("Balance should be fully drawn down, got %s", f.Balance.Value())
	}
	if !f.IsDepleted() {
		t.Errorf("fund should report depleted")
	}
}

func TestCoverBadDebtPartialLeavesRemainder(t *testing.T) {
	f := New()
	f.Deposit(types.NewQuote(dec(100)))
	covered := f.CoverBadDebt(types.NewQuote(dec(40)))
	if covered.Value().String() != "40.000000000000000000" {
		t.Errorf("covered = %s, want 40", covered.Value())
	}
	if f.Balance.Value().String() != "60.000000000000000000" {
		t.Errorf("Balance = %s, want 60", f.Balance.Value())
	}
}
