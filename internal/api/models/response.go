package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/types"
)

// BaseResponse is the base structure for all API responses
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// TradeDTO represents a trade in API responses
type TradeDTO struct {
	TradeID        uint64          `json:"trade_id"`
	BuyOrderID     uint64          `json:"buy_order_id"`
	SellOrderID    uint64          `json:"sell_order_id"`
	ExecutionPrice decimal.Decimal `json:"execution_price"`
	Quantity       int64           `json:"quantity"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewTradeDTO maps an engine trade to its wire form
func NewTradeDTO(trade *types.Trade) TradeDTO {
	return TradeDTO{
		TradeID:        trade.ID,
		BuyOrderID:     trade.BuyOrderID,
		SellOrderID:    trade.SellOrderID,
		ExecutionPrice: trade.ExecutionPrice,
		Quantity:       trade.Quantity,
		CreatedAt:      trade.CreatedAt,
	}
}

// NewTradeDTOs maps a slice of engine trades
func NewTradeDTOs(trades []*types.Trade) []TradeDTO {
	dtos := make([]TradeDTO, len(trades))
	for i, trade := range trades {
		dtos[i] = NewTradeDTO(trade)
	}
	return dtos
}

// OrderDTO represents an order in API responses
type OrderDTO struct {
	OrderID           uint64          `json:"order_id"`
	Side              string          `json:"side"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int64           `json:"quantity"`
	FilledQuantity    int64           `json:"filled_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	Status            string          `json:"status"`
	SpecID            uint64          `json:"spec_id"`
	Grade             string          `json:"grade,omitempty"`
	GradingCompany    string          `json:"grading_company,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// NewOrderDTO maps an engine order to its wire form
func NewOrderDTO(order *types.Order) *OrderDTO {
	return &OrderDTO{
		OrderID:           order.ID,
		Side:              order.Side.String(),
		Price:             order.Price,
		Quantity:          order.Quantity,
		FilledQuantity:    order.FilledQuantity,
		RemainingQuantity: order.Remaining(),
		Status:            order.Status().String(),
		SpecID:            order.Card.SpecID,
		Grade:             order.Card.Grade,
		GradingCompany:    order.Card.GradingCompany,
		CreatedAt:         order.CreatedAt,
	}
}

// SubmitOrderResponse represents the response for order submission. Order is
// the final state of the incoming order: resting with some filled amount, or
// fully filled and absent from the book.
type SubmitOrderResponse struct {
	BaseResponse
	Order  *OrderDTO  `json:"order,omitempty"`
	Trades []TradeDTO `json:"trades"`
}

// BatchOrderResult represents a single order result in batch submission
type BatchOrderResult struct {
	Index   int        `json:"index"`
	Success bool       `json:"success"`
	Order   *OrderDTO  `json:"order,omitempty"`
	Trades  []TradeDTO `json:"trades,omitempty"`
	Error   *APIError  `json:"error,omitempty"`
}

// BatchOrderSummary provides summary statistics for batch submission
type BatchOrderSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BatchOrderResponse represents the response for batch order submission
type BatchOrderResponse struct {
	BaseResponse
	Results []BatchOrderResult `json:"results"`
	Summary BatchOrderSummary  `json:"summary"`
}

// GetOrderResponse represents the response for getting a single order
type GetOrderResponse struct {
	BaseResponse
	Order *OrderDTO `json:"order,omitempty"`
}

/// BookStateResponse is the full snapshot: open orders newest first plus the
// most recent trades newest first.
type BookStateResponse struct {
	BaseResponse
	Orders []OrderDTO `json:"orders"`
	Trades []TradeDTO `json:"trades"`
}

// PriceLevelDTO represents one aggregated price level
type PriceLevelDTO struct {
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	OrderCount int             `json:"order_count"`
}

// OrderBookResponse represents aggregated depth for both sides
type OrderBookResponse struct {
	BaseResponse
	Bids []PriceLevelDTO `json:"bids"`
	Asks []PriceLevelDTO `json:"asks"`
}

// BestQuote represents the best bid or ask
type BestQuote struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// TopOfBookResponse represents the best bid and ask with spread and mid
type TopOfBookResponse struct {
	BaseResponse
	BestBid  *BestQuote       `json:"best_bid,omitempty"`
	BestAsk  *BestQuote       `json:"best_ask,omitempty"`
	Spread   *decimal.Decimal `json:"spread,omitempty"`
	MidPrice *decimal.Decimal `json:"mid_price,omitempty"`
}

// GetTradesResponse represents the response for getting trades
type GetTradesResponse struct {
	BaseResponse
	Trades []TradeDTO `json:"trades"`
	Count  int        `json:"count"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Version       string    `json:"version"`
}
