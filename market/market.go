// Package market holds per-market configuration and mutable trading
// state: the order book, funding and mark-price state, open interest,
// and status, grounded on the teacher's x/perpetual/types market struct
// (x/perpetual/keeper/oracle.go) adapted into a plain in-process record.
package market

import (
	"github.com/vela-exchange/perpcore/funding"
	"github.com/vela-exchange/perpcore/margin"
	"github.com/vela-exchange/perpcore/markprice"
	"github.com/vela-exchange/perpcore/orderbook"
	"github.com/vela-exchange/perpcore/risk"
	"github.com/vela-exchange/perpcore/types"
)

// Status is a market's trading status.
type Status int8

const (
	StatusActive Status = iota
	StatusPaused
)

func (s Status) String() string {
	if s == StatusPaused {
		return "paused"
	}
	return "active"
}

// Config is a market's immutable configuration, fixed at creation.
type Config struct {
	ID            types.MarketId
	Margin        margin.Config
	Funding       funding.Params
	MarkPrice     markprice.Params
	Risk          risk.Params
	LotSize       types.Dec
	MinOrderSize  types.Dec
}

// State is a market's full mutable trading state.
type State struct {
	Config Config
	Status Status

	Book *orderbook.Book

	IndexPrice types.Price
	HasIndex   bool

	MarkPrice markprice.State
	Funding   funding.State
	Breaker   *risk.Breaker

	OpenInterest types.Dec
	Volume       types.Dec

	LastIndexUpdate types.Timestamp
}

// New constructs a freshly added market with no index price yet set.
func New(cfg Config, now types.Timestamp) *State {
	return &State{
		Config:       cfg,
		Status:       StatusActive,
		Book:         orderbook.NewBook(cfg.ID),
		MarkPrice:    markprice.State{},
		Funding:      funding.NewState(now),
		Breaker:      risk.New(),
		OpenInterest: types.ZeroDec(),
		Volume:       types.ZeroDec(),
	}
}

// IsActive reports whether the market currently accepts new orders.
func (s *State) IsActive() bool {
	return s.Status == StatusActive && !s.Breaker.Active
}

// SetIndexPrice records a new index-price observation and (re)derives the
// mark price, seeding mark-price state on the first observation.
func (s *State) SetIndexPrice(price types.Price, now types.Timestamp) {
	if !s.HasIndex {
		s.MarkPrice = markprice.NewState(price)
		s.HasIndex = true
	}
	s.MarkPrice = markprice.Update(s.MarkPrice, price, s.bookMid(), s.Config.MarkPrice)
	s.IndexPrice = price
	s.LastIndexUpdate = now
}

// RefreshMark re-derives the mark price from the current index and book
// mid, without a new index observation (e.g. after a trade moves the
// book).
func (s *State) RefreshMark() {
	if !s.HasIndex {
		return
	}
	s.MarkPrice = markprice.Update(s.MarkPrice, s.IndexPrice, s.bookMid(), s.Config.MarkPrice)
}

// bookMid adapts the book's raw mid Dec into the *types.Price markprice.
// Update expects, returning nil when the book has no two-sided market.
func (s *State) bookMid() *types.Price {
	mid, ok := s.Book.MidPrice()
	if !ok {
		return nil
	}
	p := types.NewPriceUnchecked(mid)
	return &p
}

// AddOpenInterest adjusts open interest by delta (may be negative).
func (s *State) AddOpenInterest(delta types.Dec) {
	s.OpenInterest = s.OpenInterest.Add(delta)
}

// AddVolume accumulates traded notional.
func (s *State) AddVolume(delta types.Dec) {
	s.Volume = s.Volume.Add(delta)
}
