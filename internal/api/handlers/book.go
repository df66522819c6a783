package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/api/models"
	"github.com/slabmarket/matching-engine/internal/logger"
	"github.com/slabmarket/matching-engine/internal/matching"
)

// parseLimit parses a positive integer query parameter, clamped to max
func parseLimit(raw string, def, max int) int {
	limit := def
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

func toPriceLevelDTOs(levels []matching.LevelSummary) []models.PriceLevelDTO {
	dtos := make([]models.PriceLevelDTO, len(levels))
	for i, lvl := range levels {
		dtos[i] = models.PriceLevelDTO{
			Price:      lvl.Price,
			Quantity:   lvl.Quantity,
			OrderCount: lvl.OrderCount,
		}
	}
	return dtos
}

// BookStateHandler returns the full book state: every open order plus the
// most recent trades, both newest first.
func (eh *EngineHolder) BookStateHandler(w http.ResponseWriter, r *http.Request) {
	tradeLimit := parseLimit(r.URL.Query().Get("trades"), eh.DefaultTradeLimit, eh.MaxTradeLimit)

	snapshot := eh.Engine.Snapshot(tradeLimit)

	orders := make([]models.OrderDTO, len(snapshot.Orders))
	for i, order := range snapshot.Orders {
		orders[i] = *models.NewOrderDTO(order)
	}

	logger.Info("Book state retrieved", map[string]interface{}{
		"open_orders": len(orders),
		"trades":      len(snapshot.Trades),
	})

	writeJSON(w, http.StatusOK, models.BookStateResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Orders: orders,
		Trades: models.NewTradeDTOs(snapshot.Trades),
	})
}

// GetOrderBookHandler returns aggregated price levels for both sides
func (eh *EngineHolder) GetOrderBookHandler(w http.ResponseWriter, r *http.Request) {
	depth := parseLimit(r.URL.Query().Get("depth"), eh.DefaultBookDepth, eh.MaxBookDepth)

	bids, asks := eh.Engine.Depth(depth)

	logger.Info("Order book retrieved", map[string]interface{}{
		"bid_levels": len(bids),
		"ask_levels": len(asks),
		"depth":      depth,
	})

	writeJSON(w, http.StatusOK, models.OrderBookResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Bids: toPriceLevelDTOs(bids),
		Asks: toPriceLevelDTOs(asks),
	})
}

// GetTopOfBookHandler returns the best bid and ask with spread and mid price
func (eh *EngineHolder) GetTopOfBookHandler(w http.ResponseWriter, r *http.Request) {
	bestBid, bestAsk := eh.Engine.TopOfBook()

	response := models.TopOfBookResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
	}

	if bestBid != nil {
		response.BestBid = &models.BestQuote{Price: bestBid.Price, Quantity: bestBid.Quantity}
	}
	if bestAsk != nil {
		response.BestAsk = &models.BestQuote{Price: bestAsk.Price, Quantity: bestAsk.Quantity}
	}
	if bestBid != nil && bestAsk != nil {
		spread := bestAsk.Price.Sub(bestBid.Price)
		mid := bestBid.Price.Add(bestAsk.Price).Div(decimal.NewFromInt(2))
		response.Spread = &spread
		response.MidPrice = &mid
	}

	writeJSON(w, http.StatusOK, response)
}
