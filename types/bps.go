package types

// Bps is an integer basis-point quantity (1 bps == 0.01%).
type Bps int32

// AsFraction returns bps / 10_000 as a Dec.
func (b Bps) AsFraction() Dec {
	return NewDecFromInt64(int64(b)).QuoInt64(10_000)
}
