package types

// SignedSize is a signed position/order quantity: positive is long, negative
// is short, zero means no position. See spec.md §3.
type SignedSize struct {
	v Dec
}

// NewSignedSize wraps a raw decimal as a signed size.
func NewSignedSize(v Dec) SignedSize {
	return SignedSize{v: v}
}

// ZeroSize is the empty position size.
func ZeroSize() SignedSize {
	return SignedSize{v: ZeroDec()}
}

// Value returns the underlying signed decimal.
func (s SignedSize) Value() Dec {
	return s.v
}

// Side reports the direction implied by the sign of s.
func (s SignedSize) Side() Side {
	if s.v.IsPositive() {
		return Long
	}
	if s.v.IsNegative() {
		return Short
	}
	return SideNone
}

// IsZero reports whether the size is exactly zero (no position).
func (s SignedSize) IsZero() bool {
	return s.v.IsZero()
}

// IsLong reports whether the size is strictly positive.
func (s SignedSize) IsLong() bool {
	return s.v.IsPositive()
}

// IsShort reports whether the size is strictly negative.
func (s SignedSize) IsShort() bool {
	return s.v.IsNegative()
}

// Abs returns the unsigned magnitude as a Dec.
func (s SignedSize) Abs() Dec {
	return s.v.Abs()
}

// Add returns s + delta.
func (s SignedSize) Add(delta Dec) SignedSize {
	return SignedSize{v: s.v.Add(delta)}
}

// Neg returns the size with its sign flipped.
func (s SignedSize) Neg() SignedSize {
	return SignedSize{v: s.v.Neg()}
}

// SignedFor returns magnitude with the sign appropriate for side (positive
// for Long, negative for Short). Used to turn an order's unsigned fill
// quantity into a position delta.
func SignedFor(side Side, magnitude Dec) Dec {
	if side == Short {
		return magnitude.Neg()
	}
	return magnitude
}
