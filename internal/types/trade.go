package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade records one fill event between a buy and a sell order. The execution
// price is always the resting (maker) order's price. Immutable once created.
type Trade struct {
	ID             uint64          `json:"trade_id"`
	BuyOrderID     uint64          `json:"buy_order_id"`
	SellOrderID    uint64          `json:"sell_order_id"`
	ExecutionPrice decimal.Decimal `json:"execution_price"`
	Quantity       int64           `json:"quantity"`
	Sequence       uint64          `json:"sequence"`
	CreatedAt      time.Time       `json:"created_at"`
}
