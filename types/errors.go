package types

import "cosmossdk.io/errors"

// Error kinds per spec.md §7. Registered once with cosmossdk.io/errors the
// same way the teacher's x/perpetual/types/errors.go and
// x/orderbook/types/errors.go register theirs: one module namespace, codes
// assigned in ascending blocks so call sites can keep returning a typed
// sentinel (wrapped with errors.Wrapf for context) instead of ad hoc
// fmt.Errorf strings.
var (
	ErrMarketNotFound  = errors.Register("engine", 1, "market not found")
	ErrAccountNotFound = errors.Register("engine", 2, "account not found")
	ErrOrderNotFound   = errors.Register("engine", 3, "order not found")
	ErrMarketNotActive = errors.Register("engine", 4, "market not active")

	ErrNoMarkPrice  = errors.Register("engine", 10, "no mark price set for market")
	ErrNoIndexPrice = errors.Register("engine", 11, "no index price set for market")

	ErrInsufficientBalance = errors.Register("engine", 20, "insufficient balance")
	ErrInsufficientMargin  = errors.Register("engine", 21, "insufficient margin")

	ErrOrderTooSmall  = errors.Register("engine", 30, "order size below minimum")
	ErrInvalidLotSize = errors.Register("engine", 31, "order size is not a multiple of the lot size")
	ErrInvalidPrice   = errors.Register("engine", 32, "invalid price")
	ErrInvalidLeverage = errors.Register("engine", 33, "invalid leverage")

	ErrCircuitBreakerActive = errors.Register("engine", 40, "circuit breaker active")

	ErrPositionTooLarge     = errors.Register("engine", 50, "position size exceeds risk cap")
	ErrOpenInterestExceeded = errors.Register("engine", 51, "open interest cap exceeded")

	ErrPriceStale = errors.Register("engine", 60, "oracle price is stale")

	// ErrLiquidatable is defined for API completeness (spec.md §9 Open
	// Questions notes the source declares but never returns it from a core
	// path); reserved for a future collaborator that wants to reject
	// account-level actions while a liquidation is pending.
	ErrLiquidatable = errors.Register("engine", 70, "account has a liquidatable position")
)

// CancelReason tags why an order was removed without resting, per the
// OrderCanceled event payload in spec.md §6.
type CancelReason int8

const (
	CancelUserRequested CancelReason = iota
	CancelInsufficientMargin
	CancelExpired
	CancelPostOnlyWouldTake
	CancelReduceOnlyInvalid
	CancelLiquidation
)

func (r CancelReason) String() string {
	switch r {
	case CancelUserRequested:
		return "UserRequested"
	case CancelInsufficientMargin:
		return "InsufficientMargin"
	case CancelExpired:
		return "Expired"
	case CancelPostOnlyWouldTake:
		return "PostOnlyWouldTake"
	case CancelReduceOnlyInvalid:
		return "ReduceOnlyInvalid"
	case CancelLiquidation:
		return "Liquidation"
	default:
		return "Unknown"
	}
}
