package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slabmarket/matching-engine/internal/api/models"
	"github.com/slabmarket/matching-engine/internal/logger"
	"github.com/slabmarket/matching-engine/internal/matching"
)

// EngineHolder wraps the matching engine for dependency injection
type EngineHolder struct {
	Engine *matching.Engine

	DefaultTradeLimit int
	MaxTradeLimit     int
	DefaultBookDepth  int
	MaxBookDepth      int
}

// NewEngineHolder creates a new engine holder with default query limits
func NewEngineHolder(engine *matching.Engine) *EngineHolder {
	return &EngineHolder{
		Engine:            engine,
		DefaultTradeLimit: 20,
		MaxTradeLimit:     1000,
		DefaultBookDepth:  10,
		MaxBookDepth:      100,
	}
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeErrorResponse writes an error response
func writeErrorResponse(w http.ResponseWriter, httpErr *models.HTTPError) {
	logger.Warn("Request failed", map[string]interface{}{
		"error_code": httpErr.Error.Code,
		"status":     httpErr.StatusCode,
	})

	writeJSON(w, httpErr.StatusCode, models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   httpErr.Error.Message,
		Error:     &httpErr.Error,
	})
}

// engineErrorToHTTP maps engine errors to wire errors, separating user error
// from system error
func engineErrorToHTTP(err error) *models.HTTPError {
	switch {
	case errors.Is(err, matching.ErrInvalidOrder):
		return models.ErrBadRequest(err.Error(), nil)
	case errors.Is(err, matching.ErrInvariantViolation):
		return models.ErrInternal(err.Error())
	default:
		return models.ErrInternal("Order submission failed")
	}
}

// SubmitOrderHandler handles single order submission
func (eh *EngineHolder) SubmitOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitOrderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	result, err := eh.Engine.SubmitOrder(req.ParsedSide(), req.Price, req.Quantity, req.Card())
	if err != nil {
		writeErrorResponse(w, engineErrorToHTTP(err))
		return
	}

	logger.Info("Order submitted", map[string]interface{}{
		"order_id": result.Order.ID,
		"side":     result.Order.Side.String(),
		"price":    result.Order.Price.String(),
		"status":   result.Order.Status().String(),
		"trades":   len(result.Trades),
	})

	message := "Order placed on book."
	if len(result.Trades) > 0 {
		message = strconv.Itoa(len(result.Trades)) + " trade(s) executed!"
	}

	writeJSON(w, http.StatusOK, models.SubmitOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
			Message:   message,
		},
		Order:  models.NewOrderDTO(result.Order),
		Trades: models.NewTradeDTOs(result.Trades),
	})
}

// BatchOrderHandler handles batch order submission. Orders are admitted one
// at a time in array order, so their sequence numbers follow the array.
func (eh *EngineHolder) BatchOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.BatchOrderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	results := make([]models.BatchOrderResult, len(req.Orders))
	successful := 0
	failed := 0

	for i, orderReq := range req.Orders {
		result := models.BatchOrderResult{Index: i}

		if httpErr := orderReq.Validate(); httpErr != nil {
			result.Error = &httpErr.Error
			failed++
		} else if submitted, err := eh.Engine.SubmitOrder(orderReq.ParsedSide(), orderReq.Price, orderReq.Quantity, orderReq.Card()); err != nil {
			httpErr := engineErrorToHTTP(err)
			result.Error = &httpErr.Error
			failed++
		} else {
			result.Success = true
			result.Order = models.NewOrderDTO(submitted.Order)
			result.Trades = models.NewTradeDTOs(submitted.Trades)
			successful++
		}

		results[i] = result
	}

	logger.Info("Batch processed", map[string]interface{}{
		"total":      len(req.Orders),
		"successful": successful,
		"failed":     failed,
	})

	writeJSON(w, http.StatusOK, models.BatchOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Results: results,
		Summary: models.BatchOrderSummary{
			Total:      len(req.Orders),
			Successful: successful,
			Failed:     failed,
		},
	})
}

// GetOrderHandler handles retrieving a single order
func (eh *EngineHolder) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(r.URL.Path, "/")
	orderIDStr := pathParts[len(pathParts)-1]
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid order ID format", map[string]interface{}{"provided_value": orderIDStr}))
		return
	}

	order, err := eh.Engine.GetOrder(orderID)
	if err != nil {
		writeErrorResponse(w, models.ErrOrderNotFoundError(orderID))
		return
	}

	writeJSON(w, http.StatusOK, models.GetOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Order: models.NewOrderDTO(order),
	})
}
