package types

import "cosmossdk.io/errors"

// Price is a strictly positive decimal. Construction with zero or negative
// value is a domain error per spec.md §3.
type Price struct {
	v Dec
}

// NewPrice validates and constructs a Price.
func NewPrice(v Dec) (Price, error) {
	if !v.IsPositive() {
		return Price{}, errors.Wrapf(ErrInvalidPrice, "price must be positive, got %s", v.String())
	}
	return Price{v: v}, nil
}

// NewPriceUnchecked constructs a Price without validation. Reserved for
// internal call sites that already know the value is positive (e.g. mark
// price derivation, which is provably positive for any realistic
// max_premium per spec.md §4.5).
func NewPriceUnchecked(v Dec) Price {
	return Price{v: v}
}

// Value returns the underlying decimal.
func (p Price) Value() Dec {
	return p.v
}

// IsZero reports whether the price carries the zero value (an unset Price).
func (p Price) IsZero() bool {
	return p.v.IsNil() || p.v.IsZero()
}
