package types

import "cosmossdk.io/math"

// Dec is the fixed-precision decimal used for every monetary and ratio value
// in the core, per spec.md §3. It is a direct alias of cosmossdk.io/math's
// arbitrary-precision, deterministic decimal (18 fractional digits backed by
// big.Int) rather than a wrapper, so every LegacyDec method (Add, Sub, Mul,
// Quo, GT, Neg, Abs, ...) is available without indirection.
type Dec = math.LegacyDec

// ZeroDec returns the additive identity.
func ZeroDec() Dec { return math.LegacyZeroDec() }

// OneDec returns the multiplicative identity.
func OneDec() Dec { return math.LegacyOneDec() }

// NewDecFromInt64 builds a Dec from an integer.
func NewDecFromInt64(v int64) Dec { return math.LegacyNewDec(v) }

// NewDecWithPrec builds a Dec equal to v * 10^-prec, e.g.
// NewDecWithPrec(5, 2) == 0.05.
func NewDecWithPrec(v int64, prec int64) Dec { return math.LegacyNewDecWithPrec(v, prec) }

// MustDecFromString parses a decimal literal, panicking on malformed input.
// Reserved for constructing compile-time constants (default configs); never
// used on externally supplied strings.
func MustDecFromString(s string) Dec { return math.LegacyMustNewDecFromStr(s) }

// MinDec returns the smaller of a and b.
func MinDec(a, b Dec) Dec { return math.LegacyMinDec(a, b) }

// MaxDec returns the larger of a and b.
func MaxDec(a, b Dec) Dec {
	if a.GT(b) {
		return a
	}
	return b
}

// ClampDec bounds v to [lo, hi].
func ClampDec(v, lo, hi Dec) Dec {
	if v.LT(lo) {
		return lo
	}
	if v.GT(hi) {
		return hi
	}
	return v
}
