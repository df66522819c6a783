package testutils

import (
	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/api/models"
)

// Request builders for common test cases

// NewBidOrder creates a bid order request
func NewBidOrder(price string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		Side:           "bid",
		Price:          decimal.RequireFromString(price),
		Quantity:       quantity,
		SpecID:         7,
		Grade:          "10",
		GradingCompany: "PSA",
	}
}

// NewAskOrder creates an ask order request
func NewAskOrder(price string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		Side:           "ask",
		Price:          decimal.RequireFromString(price),
		Quantity:       quantity,
		SpecID:         7,
		Grade:          "10",
		GradingCompany: "PSA",
	}
}

// NewBatchRequest creates a batch order request
func NewBatchRequest(orders ...models.SubmitOrderRequest) models.BatchOrderRequest {
	return models.BatchOrderRequest{
		Orders: orders,
	}
}
