// Package events implements the append-only, bounded-retention event log
// of spec.md §6, grounded on the teacher's typed event payloads
// (x/perpetual/types, x/orderbook/types) adapted from proto-generated
// chain events into a plain in-process log.
package events

import "github.com/vela-exchange/perpcore/types"

// Kind identifies an event's payload type.
type Kind string

const (
	KindAccountCreated   Kind = "account_created"
	KindDeposited        Kind = "deposited"
	KindWithdrawn        Kind = "withdrawn"
	KindMarketAdded      Kind = "market_added"
	KindMarketPaused     Kind = "market_paused"
	KindMarketResumed    Kind = "market_resumed"
	KindIndexPriceUpdated Kind = "index_price_updated"
	KindMarkPriceUpdated Kind = "mark_price_updated"
	KindOrderPlaced      Kind = "order_placed"
	KindOrderFilled      Kind = "order_filled"
	KindOrderCancelled   Kind = "order_cancelled"
	KindPositionOpened   Kind = "position_opened"
	KindPositionUpdated  Kind = "position_updated"
	KindPositionClosed   Kind = "position_closed"
	KindFundingSettled   Kind = "funding_settled"
	KindLiquidated       Kind = "liquidated"
	KindADLExecuted      Kind = "adl_executed"
	KindInsuranceFunded  Kind = "insurance_funded"
	KindCircuitBreakerTripped Kind = "circuit_breaker_tripped"
	KindCircuitBreakerReset   Kind = "circuit_breaker_reset"
)

// Event is one append-only log entry. Payload is one of the Kind-specific
// structs below.
type Event struct {
	ID        types.EventId
	Kind      Kind
	Market    types.MarketId
	Timestamp types.Timestamp
	Payload   interface{}
}

// Payload types, one per Kind, carrying the fields spec.md §6 names for
// each event.

type AccountCreated struct {
	Account types.AccountId
}

type Deposited struct {
	Account types.AccountId
	Amount  types.Quote
	Balance types.Quote
}

type Withdrawn struct {
	Account types.AccountId
	Amount  types.Quote
	Balance types.Quote
}

type MarketAdded struct {
	Market types.MarketId
}

type MarketPaused struct {
	Market types.MarketId
}

type MarketResumed struct {
	Market types.MarketId
}

type IndexPriceUpdated struct {
	Market types.MarketId
	Price  types.Price
}

type MarkPriceUpdated struct {
	Market types.MarketId
	Mark   types.Price
	Premium types.Dec
}

type OrderPlaced struct {
	Order   types.OrderId
	Account types.AccountId
	Side    types.Side
}

type OrderFilled struct {
	Order      types.OrderId
	Account    types.AccountId
	Price      types.Price
	Size       types.Dec
	Liquidity  string // "maker" or "taker"
}

type OrderCancelled struct {
	Order   types.OrderId
	Account types.AccountId
	Reason  types.CancelReason
}

type PositionOpened struct {
	Account    types.AccountId
	Market     types.MarketId
	Size       types.SignedSize
	Entry      types.Price
	Collateral types.Quote
}

type PositionUpdated struct {
	Account    types.AccountId
	Market     types.MarketId
	Size       types.SignedSize
	Entry      types.Price
	Collateral types.Quote
}

type PositionClosed struct {
	Account     types.AccountId
	Market      types.MarketId
	RealizedPnL types.Quote
}

type FundingSettled struct {
	Market types.MarketId
	Rate   types.Dec
}

type Liquidated struct {
	Account types.AccountId
	Market  types.MarketId
	Size    types.SignedSize
	Price   types.Price
	Penalty types.Quote
	BadDebt types.Quote
}

type ADLExecuted struct {
	BankruptAccount types.AccountId
	Market          types.MarketId
	Counterparty    types.AccountId
	Size            types.Dec
	Price           types.Price
}

type InsuranceFunded struct {
	Amount  types.Quote
	Balance types.Quote
}

type CircuitBreakerTripped struct {
	Market types.MarketId
	Reason string
}

type CircuitBreakerReset struct {
	Market types.MarketId
}

// Log is an append-only event log bounded to a fixed retention count.
// Once full, appending drops the oldest entry (FIFO), per spec.md §6.
type Log struct {
	maxEvents int
	nextID    types.EventId
	events    []Event
}

// NewLog constructs a log retaining at most maxEvents entries.
func NewLog(maxEvents int) *Log {
	return &Log{maxEvents: maxEvents, nextID: 1}
}

// Append adds a new event with a strictly-increasing ID, evicting the
// oldest entry if the log is at capacity.
func (l *Log) Append(kind Kind, market types.MarketId, now types.Timestamp, payload interface{}) Event {
	e := Event{ID: l.nextID, Kind: kind, Market: market, Timestamp: now, Payload: payload}
	l.nextID++
	l.events = append(l.events, e)
	if l.maxEvents > 0 && len(l.events) > l.maxEvents {
		l.events = l.events[len(l.events)-l.maxEvents:]
	}
	return e
}

// All returns the currently retained events, oldest first.
func (l *Log) All() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Since returns retained events with ID strictly greater than afterID.
func (l *Log) Since(afterID types.EventId) []Event {
	out := make([]Event, 0)
	for _, e := range l.events {
		if e.ID > afterID {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of currently retained events.
func (l *Log) Len() int {
	return len(l.events)
}
