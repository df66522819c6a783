package storage

import (
	"errors"

	"github.com/slabmarket/matching-engine/internal/types"
)

// ErrNotFound is returned by lookups for ids a store has never seen
var ErrNotFound = errors.New("not found")

// OrderStore abstracts order persistence. Implementations can be in-memory,
// Redis, PostgreSQL, or a composite of those. Orders are never deleted; a
// filled order stays stored as history.
type OrderStore interface {
	// Save stores a newly accepted order
	Save(order *types.Order) error

	// Get retrieves an order by id
	Get(orderID uint64) (*types.Order, error)

	// Update rewrites an order after a fill
	Update(order *types.Order) error

	// GetAll returns every stored order
	GetAll() []*types.Order

	// GetOpen returns orders that still have remaining quantity
	GetOpen() []*types.Order

	// GetBySide returns orders on one side of the book
	GetBySide(side types.Side) []*types.Order

	// Close releases any resources held by the store
	Close() error
}

// TradeStore abstracts trade persistence. Implementations can be an
// in-memory ring, a file log, Redis, or PostgreSQL.
type TradeStore interface {
	// Save persists a single trade
	Save(trade *types.Trade) error

	// SaveBatch persists all trades from one matching call
	SaveBatch(trades []*types.Trade) error

	// GetRecent retrieves up to limit trades, newest first
	GetRecent(limit int) ([]*types.Trade, error)

	// Close releases any resources held by the store
	Close() error
}

// EventLog is the append-only log of accepted orders. Engine state is
// recoverable by replaying it in sequence order.
type EventLog interface {
	// Append records one accepted submission
	Append(event *types.OrderEvent) error

	// ReadAll returns every recorded event in append order
	ReadAll() ([]types.OrderEvent, error)

	// Close flushes and releases the log
	Close() error
}
