package memory

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/types"
)

func newTrade(id uint64) *types.Trade {
	return &types.Trade{
		ID:             id,
		BuyOrderID:     id * 10,
		SellOrderID:    id*10 + 1,
		ExecutionPrice: decimal.RequireFromString("100.00"),
		Quantity:       1,
		Sequence:       id,
	}
}

func TestTradeStoreGetRecentNewestFirst(t *testing.T) {
	store := NewInMemoryTradeStore(10)

	for i := uint64(1); i <= 5; i++ {
		if err := store.Save(newTrade(i)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	trades, err := store.GetRecent(3)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	for i, want := range []uint64{5, 4, 3} {
		if trades[i].ID != want {
			t.Errorf("position %d: expected trade %d, got %d", i, want, trades[i].ID)
		}
	}
}

func TestTradeStoreBounded(t *testing.T) {
	store := NewInMemoryTradeStore(3)

	var batch []*types.Trade
	for i := uint64(1); i <= 5; i++ {
		batch = append(batch, newTrade(i))
	}
	if err := store.SaveBatch(batch); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	trades, err := store.GetRecent(0)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(trades) != 3 {
		t.Fatalf("expected the store to hold 3 trades, got %d", len(trades))
	}
	if trades[0].ID != 5 || trades[2].ID != 3 {
		t.Errorf("oldest trades were not evicted: %v", trades)
	}
}
