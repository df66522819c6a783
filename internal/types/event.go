package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is the durable record of one accepted submission. Replaying the
// event log in sequence order reconstructs the full engine state, because
// matching is deterministic in the admission order.
type OrderEvent struct {
	Sequence   uint64          `json:"sequence"`
	Side       Side            `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	Card       CardSpec        `json:"card"`
	AcceptedAt time.Time       `json:"accepted_at"`
}
