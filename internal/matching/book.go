package matching

import (
	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/types"
)

// Book holds the two sides of the order book. Bids match best-high-first,
// asks best-low-first; each side is a price tree of FIFO levels. Only the
// engine mutates the book, and only under its write lock.
type Book struct {
	bids *priceTree
	asks *priceTree
}

// NewBook creates an empty book
func NewBook() *Book {
	return &Book{
		bids: newPriceTree(),
		asks: newPriceTree(),
	}
}

// BestBid returns the highest-priced bid level, or nil
func (b *Book) BestBid() *priceLevel {
	return b.bids.Max()
}

// BestAsk returns the lowest-priced ask level, or nil
func (b *Book) BestAsk() *priceLevel {
	return b.asks.Min()
}

// BestOpposite returns the best level an incoming order on side would
// match against: lowest ask for a bid, highest bid for an ask.
func (b *Book) BestOpposite(side types.Side) *priceLevel {
	if side == types.Bid {
		return b.BestAsk()
	}
	return b.BestBid()
}

func (b *Book) sideTree(side types.Side) *priceTree {
	if side == types.Bid {
		return b.bids
	}
	return b.asks
}

// InsertResting appends an order with remaining quantity to the tail of its
// price level, creating the level if absent.
func (b *Book) InsertResting(o *types.Order) {
	b.sideTree(o.Side).Upsert(o.Price).Enqueue(o)
}

// PopFilled removes the head of a level once it is fully filled and drops
// the level itself when its queue becomes empty. Empty levels never persist.
func (b *Book) PopFilled(side types.Side, lvl *priceLevel) {
	lvl.PopFront()
	if lvl.Empty() {
		b.sideTree(side).Delete(lvl.price)
	}
}

// Crossed reports whether two resting sides overlap. A true result after a
// completed submission is an invariant violation.
func (b *Book) Crossed() bool {
	bid, ask := b.BestBid(), b.BestAsk()
	if bid == nil || ask == nil {
		return false
	}
	return bid.price.Cmp(ask.price) >= 0
}

// LevelSummary is the aggregated view of one price level
type LevelSummary struct {
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	OrderCount int             `json:"order_count"`
}

// BidDepth returns bid levels best first (descending price)
func (b *Book) BidDepth(limit int) []LevelSummary {
	out := make([]LevelSummary, 0, limit)
	b.bids.Descending(func(l *priceLevel) bool {
		out = append(out, LevelSummary{Price: l.price, Quantity: l.OpenQuantity(), OrderCount: l.OrderCount()})
		return limit <= 0 || len(out) < limit
	})
	return out
}

// AskDepth returns ask levels best first (ascending price)
func (b *Book) AskDepth(limit int) []LevelSummary {
	out := make([]LevelSummary, 0, limit)
	b.asks.Ascending(func(l *priceLevel) bool {
		out = append(out, LevelSummary{Price: l.price, Quantity: l.OpenQuantity(), OrderCount: l.OrderCount()})
		return limit <= 0 || len(out) < limit
	})
	return out
}
