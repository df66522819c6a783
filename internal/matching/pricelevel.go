package matching

import (
	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/types"
)

// priceLevel is the FIFO queue of resting orders at one price. Orders join
// at the tail and are always consumed from the head, which is what makes
// sequence numbers a total time priority within the level.
type priceLevel struct {
	price   decimal.Decimal
	queue   []*types.Order
	openQty int64
}

func newPriceLevel(price decimal.Decimal) *priceLevel {
	return &priceLevel{price: price}
}

func (l *priceLevel) Enqueue(o *types.Order) {
	l.queue = append(l.queue, o)
	l.openQty += o.Remaining()
}

// Front returns the oldest resting order at this price, or nil
func (l *priceLevel) Front() *types.Order {
	if len(l.queue) == 0 {
		return nil
	}
	return l.queue[0]
}

// PopFront removes and returns the head of the queue
func (l *priceLevel) PopFront() *types.Order {
	if len(l.queue) == 0 {
		return nil
	}
	o := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	l.openQty -= o.Remaining()
	if l.openQty < 0 {
		l.openQty = 0
	}
	return o
}

// ReduceOpen records a partial fill of a queued order
func (l *priceLevel) ReduceOpen(qty int64) {
	l.openQty -= qty
	if l.openQty < 0 {
		l.openQty = 0
	}
}

func (l *priceLevel) Empty() bool {
	return len(l.queue) == 0
}

func (l *priceLevel) OrderCount() int {
	return len(l.queue)
}

// OpenQuantity is the total unfilled quantity queued at this price
func (l *priceLevel) OpenQuantity() int64 {
	return l.openQty
}
