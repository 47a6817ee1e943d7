package orderbook

import "github.com/vela-exchange/perpcore/types"

// Fill is one execution produced by matching, always priced at the
// resting (maker) order's price per spec.md §4.1 step 5 — price
// improvement always goes to the taker.
type Fill struct {
	MakerOrder   *Order
	TakerOrder   *Order
	TakerSide    types.Side
	Price        types.Dec
	Size         types.Dec
	MakerIsFully bool // true if the maker order was fully consumed by this fill
}

// MatchResult is the outcome of running an incoming order against the
// opposing half-book.
type MatchResult struct {
	Fills        []Fill
	Remaining    types.Dec
	FullyFilled  bool
}

// Match consumes order against the opposing half-book of book, mutating
// both the maker orders' remaining size and the book (fully-consumed
// makers are removed). It never mutates positions, collateral, or open
// interest — that happens in a second phase over the returned fills, per
// the Design Notes §9 "matching and position update are two phases".
func Match(book *Book, order *Order) *MatchResult {
	opposite := book.sideOf(order.Side.Opposite())
	result := &MatchResult{Remaining: order.Remaining}

	for !order.Remaining.IsZero() {
		maker, ok := opposite.best()
		if !ok {
			break
		}
		if !priceCompatible(order, maker) {
			break
		}

		fillSize := types.MinDec(order.Remaining, maker.Remaining)
		fillPrice := maker.Key().Price

		order.Fill(fillSize)
		maker.Fill(fillSize)

		fullyConsumed := maker.IsFilled()
		result.Fills = append(result.Fills, Fill{
			MakerOrder:   maker,
			TakerOrder:   order,
			TakerSide:    order.Side,
			Price:        fillPrice,
			Size:         fillSize,
			MakerIsFully: fullyConsumed,
		})

		if fullyConsumed {
			opposite.remove(maker.ID)
		}
		result.Remaining = order.Remaining
	}

	result.FullyFilled = result.Remaining.IsZero()
	return result
}

// priceCompatible implements spec.md §4.1 step 2: market orders skip the
// price test; a taker buy requires maker.price <= order.price, a taker sell
// requires maker.price >= order.price.
func priceCompatible(order, maker *Order) bool {
	if order.OrderType == OrderTypeMarket {
		return true
	}
	if order.Price == nil {
		return true
	}
	makerPrice := maker.Key().Price
	if order.Side == types.Long {
		return makerPrice.LTE(order.Price.Value())
	}
	return makerPrice.GTE(order.Price.Value())
}

// WouldFillSize reports the total size a FOK pre-check dry run of order
// against book would fill, without mutating book or order, per spec.md
// §4.1 FOK semantics ("if a dry-run match would not fill the full size,
// the order is rejected entirely").
func WouldFillSize(book *Book, order *Order) types.Dec {
	opposite := book.sideOf(order.Side.Opposite())
	remaining := order.Remaining
	filled := types.ZeroDec()

	// Walk a read-only snapshot of resting orders best-first; no mutation.
	for _, maker := range opposite.top(opposite.len()) {
		if remaining.IsZero() {
			break
		}
		if !priceCompatible(order, maker) {
			break
		}
		take := types.MinDec(remaining, maker.Remaining)
		filled = filled.Add(take)
		remaining = remaining.Sub(take)
	}
	return filled
}
