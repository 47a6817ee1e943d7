package types

import "cosmossdk.io/errors"

// Leverage is a decimal >= 1.
type Leverage struct {
	v Dec
}

// NewLeverage validates and constructs a Leverage.
func NewLeverage(v Dec) (Leverage, error) {
	if v.LT(OneDec()) {
		return Leverage{}, errors.Wrapf(ErrInvalidLeverage, "leverage must be >= 1, got %s", v.String())
	}
	return Leverage{v: v}, nil
}

// NewLeverageUnchecked constructs a Leverage without validation.
func NewLeverageUnchecked(v Dec) Leverage {
	return Leverage{v: v}
}

// Value returns the underlying decimal.
func (l Leverage) Value() Dec {
	return l.v
}

// InitialMarginFraction returns 1 / leverage.
func (l Leverage) InitialMarginFraction() Dec {
	return OneDec().Quo(l.v)
}
