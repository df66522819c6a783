package matching

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/logger"
	"github.com/slabmarket/matching-engine/internal/storage"
	"github.com/slabmarket/matching-engine/internal/types"
)

// TradePublisher receives executed trades after a submission commits.
// Implementations must not block.
type TradePublisher interface {
	PublishTrades([]*types.Trade)
}

// Engine is the single entry point to the matching core for one listing.
// It owns the book, the ledger and the trade log, and serializes every
// submission through one mutex so matches never interleave.
type Engine struct {
	mu       sync.RWMutex
	book     *Book
	ledger   *Ledger
	tradeLog *TradeLog

	nextOrderID uint64
	nextSeq     uint64
	nextTradeID uint64

	orderStore storage.OrderStore
	tradeStore storage.TradeStore
	eventLog   storage.EventLog
	publisher  TradePublisher
}

// NewEngine creates an engine with no persistence wired
func NewEngine() *Engine {
	return &Engine{
		book:     NewBook(),
		ledger:   NewLedger(),
		tradeLog: NewTradeLog(1000),
	}
}

// NewEngineWithStores creates an engine that mirrors accepted orders and
// executed trades into the given stores
func NewEngineWithStores(orderStore storage.OrderStore, tradeStore storage.TradeStore) *Engine {
	e := NewEngine()
	e.orderStore = orderStore
	e.tradeStore = tradeStore
	return e
}

// SetEventLog attaches the accepted-order event log. Attach after replay so
// replayed submissions are not appended twice.
func (e *Engine) SetEventLog(log storage.EventLog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventLog = log
}

// SetTradeHistorySize resizes the in-memory trade history. Call before any
// submissions; resizing discards trades already held.
func (e *Engine) SetTradeHistorySize(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tradeLog = NewTradeLog(n)
}

// SetPublisher attaches a trade feed publisher
func (e *Engine) SetPublisher(p TradePublisher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publisher = p
}

// SubmitResult is what one submission produced: the trades executed in this
// call, oldest first, and the final state of the incoming order.
type SubmitResult struct {
	Order  *types.Order
	Trades []*types.Trade
}

// SubmitOrder validates, matches and commits one incoming order. The whole
// call is atomic: matching is planned against the book without mutating it,
// and state changes are applied only once the full plan is known to be
// sound.
func (e *Engine) SubmitOrder(side types.Side, price decimal.Decimal, quantity int64, card types.CardSpec) (*SubmitResult, error) {
	if err := validateOrder(side, price, quantity); err != nil {
		return nil, err
	}
	return e.submit(side, price, quantity, card, true)
}

func validateOrder(side types.Side, price decimal.Decimal, quantity int64) error {
	if side != types.Bid && side != types.Ask {
		return &InvalidOrderError{Field: "side", Reason: "must be bid or ask"}
	}
	if price.Sign() <= 0 {
		return &InvalidOrderError{Field: "price", Reason: "must be positive"}
	}
	if quantity <= 0 {
		return &InvalidOrderError{Field: "quantity", Reason: "must be positive"}
	}
	return nil
}

func (e *Engine) submit(side types.Side, price decimal.Decimal, quantity int64, card types.CardSpec, record bool) (*SubmitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.book.Crossed() {
		return nil, &InvariantError{Detail: "book crossed at rest before matching"}
	}

	fills, err := e.planMatch(side, price, quantity)
	if err != nil {
		return nil, err
	}

	// Plan is sound; everything past this point commits.
	e.nextOrderID++
	e.nextSeq++
	incoming := types.NewOrder(e.nextOrderID, side, price, quantity, e.nextSeq, card)
	e.ledger.Append(incoming)

	trades := make([]*types.Trade, 0, len(fills))
	for _, f := range fills {
		incoming.FilledQuantity += f.qty
		f.resting.FilledQuantity += f.qty

		e.nextTradeID++
		trade := &types.Trade{
			ID:             e.nextTradeID,
			ExecutionPrice: f.resting.Price,
			Quantity:       f.qty,
			Sequence:       e.nextTradeID,
			CreatedAt:      time.Now().UTC(),
		}
		if side == types.Bid {
			trade.BuyOrderID = incoming.ID
			trade.SellOrderID = f.resting.ID
		} else {
			trade.BuyOrderID = f.resting.ID
			trade.SellOrderID = incoming.ID
		}
		trades = append(trades, trade)

		f.level.ReduceOpen(f.qty)
		if f.resting.Remaining() == 0 {
			e.book.PopFilled(side.Opposite(), f.level)
		}
		e.persistOrderUpdate(f.resting)
	}

	e.tradeLog.Append(trades...)
	if incoming.Remaining() > 0 {
		e.book.InsertResting(incoming)
	}

	e.persistOrderSave(incoming)
	e.persistTrades(trades)
	if record {
		e.recordEvent(incoming)
	}
	if e.publisher != nil && len(trades) > 0 {
		e.publisher.PublishTrades(trades)
	}

	return &SubmitResult{Order: incoming.Clone(), Trades: trades}, nil
}

type plannedFill struct {
	resting *types.Order
	level   *priceLevel
	qty     int64
}

// planMatch walks the opposite side best price first, oldest order first,
// and computes the fills an incoming order would take. The book is not
// touched; a broken queue entry aborts with no plan.
func (e *Engine) planMatch(side types.Side, price decimal.Decimal, quantity int64) ([]plannedFill, error) {
	remaining := quantity
	var fills []plannedFill
	var planErr error

	crosses := func(levelPrice decimal.Decimal) bool {
		if side == types.Bid {
			return price.Cmp(levelPrice) >= 0
		}
		return price.Cmp(levelPrice) <= 0
	}

	visit := func(lvl *priceLevel) bool {
		if !crosses(lvl.price) {
			return false
		}
		if lvl.Empty() {
			planErr = &InvariantError{Detail: "empty price level left in book at " + lvl.price.String()}
			return false
		}
		for _, resting := range lvl.queue {
			rem := resting.Remaining()
			if rem <= 0 {
				planErr = &InvariantError{Detail: "filled order still queued at " + lvl.price.String()}
				return false
			}
			fillQty := min(remaining, rem)
			fills = append(fills, plannedFill{resting: resting, level: lvl, qty: fillQty})
			remaining -= fillQty
			if remaining == 0 {
				break
			}
		}
		return remaining > 0
	}

	if side == types.Bid {
		e.book.asks.Ascending(visit)
	} else {
		e.book.bids.Descending(visit)
	}

	if planErr != nil {
		return nil, planErr
	}
	return fills, nil
}

// GetOrder returns a copy of an order from the ledger
func (e *Engine) GetOrder(id uint64) (*types.Order, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	o, err := e.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// BookSnapshot is a consistent read of the book: open orders newest first
// and the most recent trades newest first.
type BookSnapshot struct {
	Orders []*types.Order `json:"orders"`
	Trades []*types.Trade `json:"trades"`
}

// Snapshot returns a copy of all open orders and up to tradeLimit recent
// trades, taken under the read lock so no submission is half visible.
func (e *Engine) Snapshot(tradeLimit int) *BookSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &BookSnapshot{
		Orders: e.ledger.OpenOrders(),
		Trades: e.tradeLog.Recent(tradeLimit),
	}
}

// RecentTrades returns up to limit trades, newest first
func (e *Engine) RecentTrades(limit int) []*types.Trade {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tradeLog.Recent(limit)
}

// Depth returns aggregated levels for both sides, best first
func (e *Engine) Depth(limit int) (bids, asks []LevelSummary) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.BidDepth(limit), e.book.AskDepth(limit)
}

// TopOfBook returns the best level of each side, nil when a side is empty
func (e *Engine) TopOfBook() (bestBid, bestAsk *LevelSummary) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if lvl := e.book.BestBid(); lvl != nil {
		bestBid = &LevelSummary{Price: lvl.price, Quantity: lvl.OpenQuantity(), OrderCount: lvl.OrderCount()}
	}
	if lvl := e.book.BestAsk(); lvl != nil {
		bestAsk = &LevelSummary{Price: lvl.price, Quantity: lvl.OpenQuantity(), OrderCount: lvl.OrderCount()}
	}
	return bestBid, bestAsk
}

// Close releases the engine's stores
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var lastErr error
	if e.orderStore != nil {
		if err := e.orderStore.Close(); err != nil {
			lastErr = err
		}
	}
	if e.tradeStore != nil {
		if err := e.tradeStore.Close(); err != nil {
			lastErr = err
		}
	}
	if e.eventLog != nil {
		if err := e.eventLog.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Store writes happen inside the critical section but never fail it: the
// in-memory ledger is authoritative and the event log is what recovery
// replays, so a lagging cache layer is only worth a warning.

func (e *Engine) persistOrderSave(o *types.Order) {
	if e.orderStore == nil {
		return
	}
	if err := e.orderStore.Save(o.Clone()); err != nil {
		logger.Warn("order store save failed", map[string]interface{}{
			"order_id": o.ID, "error": err.Error(),
		})
	}
}

func (e *Engine) persistOrderUpdate(o *types.Order) {
	if e.orderStore == nil {
		return
	}
	if err := e.orderStore.Update(o.Clone()); err != nil {
		logger.Warn("order store update failed", map[string]interface{}{
			"order_id": o.ID, "error": err.Error(),
		})
	}
}

func (e *Engine) persistTrades(trades []*types.Trade) {
	if e.tradeStore == nil || len(trades) == 0 {
		return
	}
	if err := e.tradeStore.SaveBatch(trades); err != nil {
		logger.Warn("trade store save failed", map[string]interface{}{
			"count": len(trades), "error": err.Error(),
		})
	}
}

func (e *Engine) recordEvent(o *types.Order) {
	if e.eventLog == nil {
		return
	}
	ev := &types.OrderEvent{
		Sequence:   o.Sequence,
		Side:       o.Side,
		Price:      o.Price,
		Quantity:   o.Quantity,
		Card:       o.Card,
		AcceptedAt: o.CreatedAt,
	}
	if err := e.eventLog.Append(ev); err != nil {
		logger.Warn("event log append failed", map[string]interface{}{
			"sequence": o.Sequence, "error": err.Error(),
		})
	}
}
