package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/types"
)

// SubmitOrderRequest represents a single order submission. Price decodes
// from a JSON number or string into an exact decimal; floats never touch it.
type SubmitOrderRequest struct {
	Side           string          `json:"side"` // "bid" | "ask"
	Price          decimal.Decimal `json:"price"`
	Quantity       int64           `json:"quantity"`
	SpecID         uint64          `json:"spec_id"`
	Grade          string          `json:"grade"`
	GradingCompany string          `json:"grading_company"`
}

// ParsedSide converts the wire side to the engine type
func (r *SubmitOrderRequest) ParsedSide() types.Side {
	switch strings.ToLower(strings.TrimSpace(r.Side)) {
	case "bid", "buy":
		return types.Bid
	case "ask", "sell":
		return types.Ask
	default:
		return types.NoSide
	}
}

// Card returns the card metadata carried by the request
func (r *SubmitOrderRequest) Card() types.CardSpec {
	return types.CardSpec{
		SpecID:         r.SpecID,
		Grade:          strings.TrimSpace(r.Grade),
		GradingCompany: strings.TrimSpace(r.GradingCompany),
	}
}

// Validate rejects malformed requests before they reach the engine
func (r *SubmitOrderRequest) Validate() *HTTPError {
	if r.ParsedSide() == types.NoSide {
		return ErrInvalidSideError(r.Side)
	}

	if r.Price.Sign() <= 0 {
		return ErrInvalidPriceError(r.Price.String())
	}

	if r.Quantity <= 0 {
		return ErrInvalidQuantityError(r.Quantity)
	}

	return nil
}

// BatchOrderRequest represents a batch order submission
type BatchOrderRequest struct {
	Orders []SubmitOrderRequest `json:"orders"`
}

// Validate validates the batch envelope
func (r *BatchOrderRequest) Validate() *HTTPError {
	if len(r.Orders) == 0 {
		return ErrBadRequest("orders array cannot be empty", map[string]interface{}{"field": "orders"})
	}

	if len(r.Orders) > 1000 {
		return ErrBadRequest("batch size cannot exceed 1000 orders",
			map[string]interface{}{"field": "orders", "max_size": 1000, "provided_size": len(r.Orders)})
	}

	return nil
}
