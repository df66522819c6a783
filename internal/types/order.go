package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the side of the book an order belongs to
type Side uint8

const (
	NoSide Side = iota
	Bid         // buy side
	Ask         // sell side
)

// String returns the wire representation of a side
func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the side as its wire string
func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes "bid" or "ask"
func (s *Side) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"bid"`, `"buy"`:
		*s = Bid
	case `"ask"`, `"sell"`:
		*s = Ask
	default:
		*s = NoSide
	}
	return nil
}

// Opposite returns the side an order matches against
func (s Side) Opposite() Side {
	switch s {
	case Bid:
		return Ask
	case Ask:
		return Bid
	default:
		return NoSide
	}
}

// Status is the lifecycle state of an order. It is always derived from
// FilledQuantity vs Quantity and never stored independently, so the two
// can never diverge.
type Status uint8

const (
	Resting Status = iota
	PartiallyFilled
	Filled
)

// String returns the wire representation of a status
func (st Status) String() string {
	switch st {
	case Resting:
		return "resting"
	case PartiallyFilled:
		return "partially_filled"
	case Filled:
		return "filled"
	default:
		return "unknown"
	}
}

// CardSpec identifies the graded card an order is for. Opaque to matching;
// a single engine instance serves a single listing.
type CardSpec struct {
	SpecID         uint64 `json:"spec_id"`
	Grade          string `json:"grade"`
	GradingCompany string `json:"grading_company"`
}

// Order is a limit order in the ledger. Quantity is the original size;
// FilledQuantity only ever grows. Sequence is the arrival index assigned by
// the engine and is the time-priority tie-break (wall clocks can collide
// within one tick, sequence numbers cannot).
type Order struct {
	ID             uint64          `json:"order_id"`
	Side           Side            `json:"side"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int64           `json:"quantity"`
	FilledQuantity int64           `json:"filled_quantity"`
	Sequence       uint64          `json:"sequence"`
	Card           CardSpec        `json:"card"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewOrder creates an order with no fills
func NewOrder(id uint64, side Side, price decimal.Decimal, quantity int64, seq uint64, card CardSpec) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Sequence:  seq,
		Card:      card,
		CreatedAt: time.Now().UTC(),
	}
}

// Remaining returns the unfilled quantity
func (o *Order) Remaining() int64 {
	return o.Quantity - o.FilledQuantity
}

// Status derives the lifecycle state from the fill counters
func (o *Order) Status() Status {
	switch {
	case o.FilledQuantity == 0:
		return Resting
	case o.FilledQuantity < o.Quantity:
		return PartiallyFilled
	default:
		return Filled
	}
}

// IsOpen reports whether the order still has quantity on the book
func (o *Order) IsOpen() bool {
	return o.FilledQuantity < o.Quantity
}

// Clone returns a copy safe to hand to readers outside the engine lock
func (o *Order) Clone() *Order {
	c := *o
	return &c
}
