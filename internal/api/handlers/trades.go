package handlers

import (
	"net/http"
	"time"

	"github.com/slabmarket/matching-engine/internal/api/models"
	"github.com/slabmarket/matching-engine/internal/logger"
)

// GetTradesHandler handles retrieving recent trades, newest first
func (eh *EngineHolder) GetTradesHandler(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), eh.DefaultTradeLimit, eh.MaxTradeLimit)

	trades := eh.Engine.RecentTrades(limit)
	tradeDTOs := models.NewTradeDTOs(trades)

	logger.Info("Retrieved trades", map[string]interface{}{
		"count": len(tradeDTOs),
		"limit": limit,
	})

	writeJSON(w, http.StatusOK, models.GetTradesResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Trades: tradeDTOs,
		Count:  len(tradeDTOs),
	})
}
