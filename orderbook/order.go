package orderbook

import (
	"github.com/google/uuid"
	"github.com/vela-exchange/perpcore/types"
)

// OrderType distinguishes limit orders (which may rest) from market orders
// (always IOC, never post) per spec.md §4.1.
type OrderType int8

const (
	OrderTypeLimit OrderType = iota
	OrderTypeMarket
)

func (t OrderType) String() string {
	if t == OrderTypeMarket {
		return "market"
	}
	return "limit"
}

// TimeInForce is one of GTC, IOC, FOK, PostOnly per spec.md §4.1. Market
// orders are always treated as IOC regardless of the field's value.
type TimeInForce int8

const (
	GTC TimeInForce = iota
	IOC
	FOK
	PostOnly
)

func (t TimeInForce) String() string {
	switch t {
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	case PostOnly:
		return "PostOnly"
	default:
		return "GTC"
	}
}

// Order is a resting or in-flight order. While resting it lives in exactly
// one half-book of one market (spec.md §3 Entities).
type Order struct {
	ID            types.OrderId
	ClientOrderID string
	Account       types.AccountId
	Market        types.MarketId
	Side          types.Side
	OrderType     OrderType
	OriginalSize  types.Dec
	Remaining     types.Dec
	Price         *types.Price // nil for market orders
	TIF           TimeInForce
	PostOnly      bool
	ReduceOnly    bool
	CreatedAt     types.Timestamp
	Arrival       types.Timestamp // alias of CreatedAt, kept distinct for OrderKey clarity
}

// NewOrder constructs an order, assigning a client order id when the caller
// did not supply one.
func NewOrder(
	id types.OrderId,
	account types.AccountId,
	market types.MarketId,
	side types.Side,
	orderType OrderType,
	size types.Dec,
	price *types.Price,
	tif TimeInForce,
	reduceOnly bool,
	clientOrderID string,
	now types.Timestamp,
) *Order {
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}
	postOnly := tif == PostOnly
	if orderType == OrderTypeMarket {
		tif = IOC
		postOnly = false
	}
	return &Order{
		ID:            id,
		ClientOrderID: clientOrderID,
		Account:       account,
		Market:        market,
		Side:          side,
		OrderType:     orderType,
		OriginalSize:  size,
		Remaining:     size,
		Price:         price,
		TIF:           tif,
		PostOnly:      postOnly,
		ReduceOnly:    reduceOnly,
		CreatedAt:     now,
		Arrival:       now,
	}
}

// IsFilled reports whether the order has no remaining size.
func (o *Order) IsFilled() bool {
	return o.Remaining.IsZero()
}

// FilledSize returns how much of the order has executed.
func (o *Order) FilledSize() types.Dec {
	return o.OriginalSize.Sub(o.Remaining)
}

// Fill reduces the order's remaining size by qty. qty must not exceed
// Remaining; callers (the matching engine) are responsible for that
// invariant since matching never over-fills by construction.
func (o *Order) Fill(qty types.Dec) {
	o.Remaining = o.Remaining.Sub(qty)
}

// Key returns the ordering key used by the half-book: price, arrival time,
// then order id, per spec.md §4.1.
func (o *Order) Key() OrderKey {
	var price types.Dec
	if o.Price != nil {
		price = o.Price.Value()
	} else {
		price = types.ZeroDec()
	}
	return OrderKey{Price: price, Arrival: o.Arrival, ID: o.ID}
}

// OrderKey is the derived ordering key (price, arrival_timestamp, order_id)
// from spec.md §3 Entities.
type OrderKey struct {
	Price   types.Dec
	Arrival types.Timestamp
	ID      types.OrderId
}
