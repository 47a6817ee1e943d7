package types

// Quote is a signed decimal denominated in the market's quote currency
// (cash, collateral, PnL). Negative values are permitted transiently for
// PnL and funding calculations; account and collateral balances clamp to
// >= 0 at the points specified in spec.md §4.6 and §8.
type Quote struct {
	v Dec
}

// NewQuote wraps a raw decimal as a Quote.
func NewQuote(v Dec) Quote {
	return Quote{v: v}
}

// ZeroQuote is the zero quote amount.
func ZeroQuote() Quote {
	return Quote{v: ZeroDec()}
}

// Value returns the underlying decimal.
func (q Quote) Value() Dec {
	return q.v
}

// Add returns q + other.
func (q Quote) Add(other Quote) Quote {
	return Quote{v: q.v.Add(other.v)}
}

// Sub returns q - other.
func (q Quote) Sub(other Quote) Quote {
	return Quote{v: q.v.Sub(other.v)}
}

// Neg returns -q.
func (q Quote) Neg() Quote {
	return Quote{v: q.v.Neg()}
}

// IsNegative reports whether q < 0.
func (q Quote) IsNegative() bool {
	return q.v.IsNegative()
}

// IsPositive reports whether q > 0.
func (q Quote) IsPositive() bool {
	return q.v.IsPositive()
}

// IsZero reports whether q == 0.
func (q Quote) IsZero() bool {
	return q.v.IsZero()
}

// ClampNonNegative returns q if q >= 0, else zero. This is the mechanism
// spec.md §4.6/§9 uses to turn an uncovered funding debit into bad debt
// instead of a negative balance.
func (q Quote) ClampNonNegative() Quote {
	if q.v.IsNegative() {
		return ZeroQuote()
	}
	return q
}
