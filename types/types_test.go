package types

import "testing"

func TestDecHelpers(t *testing.T) {
	if !ZeroDec().IsZero() {
		t.Errorf("ZeroDec should be zero")
	}
	if !OneDec().Equal(NewDecFromInt64(1)) {
		t.Errorf("OneDec should equal 1")
	}
	if NewDecWithPrec(5, 2).String() != "0.050000000000000000" {
		t.Errorf("NewDecWithPrec(5,2) = %s", NewDecWithPrec(5, 2).String())
	}

	a := NewDecFromInt64(3)
	b := NewDecFromInt64(5)
	if !MinDec(a, b).Equal(a) {
		t.Errorf("MinDec(3,5) should be 3")
	}
	if !MaxDec(a, b).Equal(b) {
		t.Errorf("MaxDec(3,5) should be 5")
	}

	tests := []struct {
		name string
		v    Dec
		want Dec
	}{
		{"below lo clamps to lo", NewDecFromInt64(-10), NewDecFromInt64(-1)},
		{"above hi clamps to hi", NewDecFromInt64(10), NewDecFromInt64(1)},
		{"inside range passes through", NewDecFromInt64(0), NewDecFromInt64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampDec(tt.v, NewDecFromInt64(-1), NewDecFromInt64(1))
			if !got.Equal(tt.want) {
				t.Errorf("ClampDec(%s) = %s, want %s", tt.v, got, tt.want)
			}
		})
	}
}

func TestPriceConstruction(t *testing.T) {
	if _, err := NewPrice(ZeroDec()); err == nil {
		t.Errorf("NewPrice(0) should error")
	}
	if _, err := NewPrice(NewDecFromInt64(-5)); err == nil {
		t.Errorf("NewPrice(-5) should error")
	}
	p, err := NewPrice(NewDecFromInt64(100))
	if err != nil {
		t.Fatalf("NewPrice(100) unexpected error: %v", err)
	}
	if !p.Value().Equal(NewDecFromInt64(100)) {
		t.Errorf("Value() = %s, want 100", p.Value())
	}
	if (Price{}).IsZero() == false {
		t.Errorf("zero-value Price should report IsZero")
	}
}

func TestLeverageConstruction(t *testing.T) {
	if _, err := NewLeverage(NewDecWithPrec(5, 1)); err == nil {
		t.Errorf("NewLeverage(0.5) should error, leverage must be >= 1")
	}
	lev, err := NewLeverage(NewDecFromInt64(10))
	if err != nil {
		t.Fatalf("NewLeverage(10) unexpected error: %v", err)
	}
	imf := lev.InitialMarginFraction()
	if imf.String() != "0.100000000000000000" {
		t.Errorf("InitialMarginFraction() = %s, want 0.1", imf)
	}
}

func TestSignedSize(t *testing.T) {
	long := NewSignedSize(NewDecFromInt64(5))
	short := NewSignedSize(NewDecFromInt64(-5))
	zero := ZeroSize()

	if long.Side() != Long || !long.IsLong() {
		t.Errorf("5 should be long")
	}
	if short.Side() != Short || !short.IsShort() {
		t.Errorf("-5 should be short")
	}
	if zero.Side() != SideNone || !zero.IsZero() {
		t.Errorf("0 should be SideNone")
	}
	if !long.Abs().Equal(NewDecFromInt64(5)) {
		t.Errorf("Abs(5) = %s, want 5", long.Abs())
	}
	if !short.Abs().Equal(NewDecFromInt64(5)) {
		t.Errorf("Abs(-5) = %s, want 5", short.Abs())
	}
	if SignedFor(Long, NewDecFromInt64(3)).IsNegative() {
		t.Errorf("SignedFor(Long, 3) should be positive")
	}
	if !SignedFor(Short, NewDecFromInt64(3)).IsNegative() {
		t.Errorf("SignedFor(Short, 3) should be negative")
	}
}

func TestQuoteArithmetic(t *testing.T) {
	a := NewQuote(NewDecFromInt64(10))
	b := NewQuote(NewDecFromInt64(3))
	if !a.Sub(b).Value().Equal(NewDecFromInt64(7)) {
		t.Errorf("10 - 3 = %s, want 7", a.Sub(b).Value())
	}
	neg := NewQuote(NewDecFromInt64(-5))
	if !neg.ClampNonNegative().IsZero() {
		t.Errorf("ClampNonNegative(-5) should be zero")
	}
	if !a.ClampNonNegative().Value().Equal(a.Value()) {
		t.Errorf("ClampNonNegative(10) should be unchanged")
	}
}

func TestTimestampArithmetic(t *testing.T) {
	base := TimestampFromMillis(1000)
	advanced := base.Add(500)
	if advanced.Millis() != 1500 {
		t.Errorf("Add(500) = %d, want 1500", advanced.Millis())
	}
	if !base.Before(advanced) {
		t.Errorf("base should be before advanced")
	}
	if !advanced.After(base) {
		t.Errorf("advanced should be after base")
	}
	hours := base.ElapsedHours(TimestampFromMillis(1000 + 3_600_000*8))
	if hours.String() != "8.000000000000000000" {
		t.Errorf("ElapsedHours over 8h = %s, want 8", hours)
	}
}

func TestBpsAsFraction(t *testing.T) {
	if AsFractionHelper(100) != "0.010000000000000000" {
		t.Errorf("100 bps = %s, want 0.01", AsFractionHelper(100))
	}
}

func AsFractionHelper(b Bps) string {
	return b.AsFraction().String()
}
