package matching

import (
	"github.com/slabmarket/matching-engine/internal/types"
)

// TradeLog is the append-only record of executed trades. A bounded ring of
// the most recent trades backs snapshot reads; the full history belongs to
// the trade stores wired into the engine.
type TradeLog struct {
	recent  []*types.Trade
	maxSize int
	total   uint64
}

// NewTradeLog creates a trade log keeping at most maxSize recent trades
func NewTradeLog(maxSize int) *TradeLog {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &TradeLog{maxSize: maxSize}
}

// Append records executed trades in order
func (tl *TradeLog) Append(trades ...*types.Trade) {
	tl.recent = append(tl.recent, trades...)
	tl.total += uint64(len(trades))
	if len(tl.recent) > tl.maxSize {
		tl.recent = tl.recent[len(tl.recent)-tl.maxSize:]
	}
}

// Recent returns up to limit trades, newest first
func (tl *TradeLog) Recent(limit int) []*types.Trade {
	if limit <= 0 || limit > len(tl.recent) {
		limit = len(tl.recent)
	}
	out := make([]*types.Trade, 0, limit)
	for i := len(tl.recent) - 1; i >= len(tl.recent)-limit; i-- {
		out = append(out, tl.recent[i])
	}
	return out
}

// Total is the count of all trades ever appended
func (tl *TradeLog) Total() uint64 {
	return tl.total
}
