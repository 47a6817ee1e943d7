package orderbook

import (
	"github.com/google/btree"
	"github.com/vela-exchange/perpcore/types"
)

// btreeDegree mirrors the teacher's orderbook_btree.go constant: it trades
// node fan-out for cache-friendliness on the price-ordered half-books.
const btreeDegree = 32

// bookItem is the google/btree.Item stored in each half-book's tree. Less
// encodes price-time-priority: ascending for asks (best = lowest price),
// descending for bids (best = highest price); either way ties break on
// earliest arrival then smallest order id, so btree.Min() always yields the
// best resting order for that side.
type bookItem struct {
	order *Order
	desc  bool
}

func (a *bookItem) Less(other btree.Item) bool {
	b := other.(*bookItem)
	ak, bk := a.order.Key(), b.order.Key()
	if !ak.Price.Equal(bk.Price) {
		if a.desc {
			return ak.Price.GT(bk.Price)
		}
		return ak.Price.LT(bk.Price)
	}
	if ak.Arrival != bk.Arrival {
		return ak.Arrival < bk.Arrival
	}
	return ak.ID < bk.ID
}

// halfBook is one side of the order book: a price-time-ordered tree of
// resting orders plus an O(log N) id index for cancel/lookup, per
// spec.md §4.1.
type halfBook struct {
	desc  bool
	tree  *btree.BTree
	index map[types.OrderId]*Order
}

func newHalfBook(desc bool) *halfBook {
	return &halfBook{
		desc:  desc,
		tree:  btree.New(btreeDegree),
		index: make(map[types.OrderId]*Order),
	}
}

func (h *halfBook) insert(o *Order) {
	h.tree.ReplaceOrInsert(&bookItem{order: o, desc: h.desc})
	h.index[o.ID] = o
}

func (h *halfBook) remove(id types.OrderId) (*Order, bool) {
	o, ok := h.index[id]
	if !ok {
		return nil, false
	}
	h.tree.Delete(&bookItem{order: o, desc: h.desc})
	delete(h.index, id)
	return o, true
}

func (h *halfBook) best() (*Order, bool) {
	item := h.tree.Min()
	if item == nil {
		return nil, false
	}
	return item.(*bookItem).order, true
}

func (h *halfBook) top(k int) []*Order {
	out := make([]*Order, 0, k)
	h.tree.Ascend(func(item btree.Item) bool {
		if len(out) >= k {
			return false
		}
		out = append(out, item.(*bookItem).order)
		return true
	})
	return out
}

func (h *halfBook) len() int {
	return h.tree.Len()
}

// Level is a price-aggregated depth snapshot: total remaining size and
// order count resting at a single price, per spec.md §4.1 bid_levels/
// ask_levels.
type Level struct {
	Price      types.Dec
	Size       types.Dec
	OrderCount int
}

func (h *halfBook) levels(k int) []Level {
	levels := make([]Level, 0, k)
	h.tree.Ascend(func(item btree.Item) bool {
		o := item.(*bookItem).order
		price := o.Key().Price
		if len(levels) > 0 && levels[len(levels)-1].Price.Equal(price) {
			last := &levels[len(levels)-1]
			last.Size = last.Size.Add(o.Remaining)
			last.OrderCount++
			return true
		}
		if len(levels) >= k {
			return false
		}
		levels = append(levels, Level{Price: price, Size: o.Remaining, OrderCount: 1})
		return true
	})
	return levels
}

// Book holds the two half-books (bids, asks) for one market.
type Book struct {
	Market types.MarketId
	bids   *halfBook // resting buy orders, best = highest price
	asks   *halfBook // resting sell orders, best = lowest price
}

// NewBook constructs an empty order book for a market.
func NewBook(market types.MarketId) *Book {
	return &Book{
		Market: market,
		bids:   newHalfBook(true),
		asks:   newHalfBook(false),
	}
}

func (b *Book) sideOf(side types.Side) *halfBook {
	if side == types.Long {
		return b.bids
	}
	return b.asks
}

// Insert posts a resting order to the book. The caller must have already
// run matching; Insert only posts, it never matches.
func (b *Book) Insert(o *Order) {
	b.sideOf(o.Side).insert(o)
}

// Remove takes an order out of whichever half-book it rests in. Returns
// false if no order with that id is resting (already filled/canceled).
func (b *Book) Remove(id types.OrderId) (*Order, bool) {
	if o, ok := b.bids.remove(id); ok {
		return o, true
	}
	return b.asks.remove(id)
}

// Lookup finds a resting order by id without removing it.
func (b *Book) Lookup(id types.OrderId) (*Order, bool) {
	if o, ok := b.bids.index[id]; ok {
		return o, true
	}
	o, ok := b.asks.index[id]
	return o, ok
}

// BestBid returns the highest-priced resting buy order, if any.
func (b *Book) BestBid() (*Order, bool) { return b.bids.best() }

// BestAsk returns the lowest-priced resting sell order, if any.
func (b *Book) BestAsk() (*Order, bool) { return b.asks.best() }

// MidPrice returns the arithmetic mid of best bid and best ask. Returns
// false if either side is empty.
func (b *Book) MidPrice() (types.Dec, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return types.Dec{}, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return types.Dec{}, false
	}
	sum := bid.Key().Price.Add(ask.Key().Price)
	return sum.QuoInt64(2), true
}

// Spread returns best ask minus best bid. Returns false if either side is
// empty.
func (b *Book) Spread() (types.Dec, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return types.Dec{}, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return types.Dec{}, false
	}
	return ask.Key().Price.Sub(bid.Key().Price), true
}

// TopBids returns up to k best-first resting buy orders.
func (b *Book) TopBids(k int) []*Order { return b.bids.top(k) }

// TopAsks returns up to k best-first resting sell orders.
func (b *Book) TopAsks(k int) []*Order { return b.asks.top(k) }

// BidLevels returns up to k price-aggregated bid depth levels, best first.
func (b *Book) BidLevels(k int) []Level { return b.bids.levels(k) }

// AskLevels returns up to k price-aggregated ask depth levels, best first.
func (b *Book) AskLevels(k int) []Level { return b.asks.levels(k) }

// Crossed reports whether the book is crossed (best_bid >= best_ask), which
// must never be true at rest per spec.md §8 invariant 8 — it may only be
// true transiently inside the matching loop.
func (b *Book) Crossed() bool {
	bid, ok := b.BestBid()
	if !ok {
		return false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return false
	}
	return bid.Key().Price.GTE(ask.Key().Price)
}
