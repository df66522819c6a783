package matching

import (
	"github.com/slabmarket/matching-engine/internal/types"
)

// Ledger is the append-only record of every order the engine has accepted.
// Orders are never removed; a fully filled order stays here as history even
// after it leaves the book's active queues.
type Ledger struct {
	orders map[uint64]*types.Order
	bySeq  []*types.Order
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{orders: make(map[uint64]*types.Order)}
}

// Append records a newly accepted order
func (l *Ledger) Append(o *types.Order) {
	l.orders[o.ID] = o
	l.bySeq = append(l.bySeq, o)
}

// Get looks up an order by id
func (l *Ledger) Get(id uint64) (*types.Order, error) {
	o, ok := l.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// Len returns the number of accepted orders
func (l *Ledger) Len() int {
	return len(l.orders)
}

// OpenOrders returns copies of all orders still open, newest first
func (l *Ledger) OpenOrders() []*types.Order {
	var out []*types.Order
	for i := len(l.bySeq) - 1; i >= 0; i-- {
		if o := l.bySeq[i]; o.IsOpen() {
			out = append(out, o.Clone())
		}
	}
	return out
}
