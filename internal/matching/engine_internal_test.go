package matching

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/types"
)

// corrupting the book from outside the engine is the only way to reach the
// invariant checks, so these tests poke at internals directly

func TestSubmitDetectsFilledOrderStillQueued(t *testing.T) {
	e := NewEngine()

	resting, err := e.SubmitOrder(types.Ask, decimal.RequireFromString("100.00"), 5, types.CardSpec{})
	if err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}

	// Mark the queued ask fully filled without dequeuing it
	queued, err := e.ledger.Get(resting.Order.ID)
	if err != nil {
		t.Fatalf("ledger.Get failed: %v", err)
	}
	queued.FilledQuantity = queued.Quantity

	ledgerLen := e.ledger.Len()
	tradeTotal := e.tradeLog.Total()

	_, err = e.SubmitOrder(types.Bid, decimal.RequireFromString("100.00"), 3, types.CardSpec{})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}

	// Nothing committed: no new order, no trades, no fill on the incoming side
	if e.ledger.Len() != ledgerLen {
		t.Errorf("ledger grew from %d to %d on a failed submission", ledgerLen, e.ledger.Len())
	}
	if e.tradeLog.Total() != tradeTotal {
		t.Errorf("trade log grew from %d to %d on a failed submission", tradeTotal, e.tradeLog.Total())
	}
}

func TestSubmitDetectsCrossedBookAtRest(t *testing.T) {
	e := NewEngine()

	// Plant crossing resting orders directly, bypassing matching
	bid := types.NewOrder(1, types.Bid, decimal.RequireFromString("105.00"), 1, 1, types.CardSpec{})
	ask := types.NewOrder(2, types.Ask, decimal.RequireFromString("100.00"), 1, 2, types.CardSpec{})
	e.book.InsertResting(bid)
	e.book.InsertResting(ask)

	_, err := e.SubmitOrder(types.Bid, decimal.RequireFromString("99.00"), 1, types.CardSpec{})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation on crossed book, got %v", err)
	}
	if e.ledger.Len() != 0 {
		t.Errorf("expected nothing admitted, ledger has %d orders", e.ledger.Len())
	}
}

func TestSubmitDetectsEmptyLevelLeftInBook(t *testing.T) {
	e := NewEngine()

	// An empty level should never exist; plant one
	e.book.asks.Upsert(decimal.RequireFromString("100.00"))

	_, err := e.SubmitOrder(types.Bid, decimal.RequireFromString("100.00"), 1, types.CardSpec{})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation on empty level, got %v", err)
	}
}

func TestLevelOpenQuantityTracksFills(t *testing.T) {
	e := NewEngine()
	price := decimal.RequireFromString("100.00")

	// Two asks queued at the same price
	if _, err := e.SubmitOrder(types.Ask, price, 2, types.CardSpec{}); err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}
	if _, err := e.SubmitOrder(types.Ask, price, 3, types.CardSpec{}); err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}

	// Take out the first completely and one unit of the second
	if _, err := e.SubmitOrder(types.Bid, price, 3, types.CardSpec{}); err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}

	lvl := e.book.BestAsk()
	if lvl == nil {
		t.Fatal("expected an ask level to remain")
	}
	if lvl.OpenQuantity() != 2 {
		t.Errorf("expected open quantity 2 at the level, got %d", lvl.OpenQuantity())
	}
	if lvl.OrderCount() != 1 {
		t.Errorf("expected 1 order at the level, got %d", lvl.OrderCount())
	}
}
