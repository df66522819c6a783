package storage

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/types"
)

// stub stores for exercising composite routing without real backends

type stubOrderStore struct {
	orders  map[uint64]*types.Order
	saveErr error
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{orders: make(map[uint64]*types.Order)}
}

func (s *stubOrderStore) Save(order *types.Order) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrderStore) Get(orderID uint64) (*types.Order, error) {
	if order, ok := s.orders[orderID]; ok {
		return order, nil
	}
	return nil, ErrNotFound
}

func (s *stubOrderStore) Update(order *types.Order) error {
	if _, ok := s.orders[order.ID]; !ok {
		return ErrNotFound
	}
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrderStore) GetAll() []*types.Order {
	var out []*types.Order
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out
}

func (s *stubOrderStore) GetOpen() []*types.Order {
	var out []*types.Order
	for _, o := range s.orders {
		if o.IsOpen() {
			out = append(out, o)
		}
	}
	return out
}

func (s *stubOrderStore) GetBySide(side types.Side) []*types.Order {
	var out []*types.Order
	for _, o := range s.orders {
		if o.Side == side {
			out = append(out, o)
		}
	}
	return out
}

func (s *stubOrderStore) Close() error { return nil }

func testOrder(id uint64) *types.Order {
	return types.NewOrder(id, types.Bid, decimal.RequireFromString("100.00"), 5, id, types.CardSpec{})
}

func TestCompositeOrderStoreWritesThroughAllLayers(t *testing.T) {
	l1 := newStubOrderStore()
	l2 := newStubOrderStore()
	composite := NewCompositeOrderStore(l1, l2)

	if err := composite.Save(testOrder(1)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := l1.Get(1); err != nil {
		t.Error("order missing from first layer")
	}
	if _, err := l2.Get(1); err != nil {
		t.Error("order missing from second layer")
	}
}

func TestCompositeOrderStoreReadsFirstHit(t *testing.T) {
	l1 := newStubOrderStore()
	l2 := newStubOrderStore()
	composite := NewCompositeOrderStore(l1, l2)

	// Present only in the second layer, as after a cold restart
	l2.orders[5] = testOrder(5)

	got, err := composite.Get(5)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != 5 {
		t.Errorf("wrong order: %+v", got)
	}

	if _, err := composite.Get(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompositeOrderStoreSaveReportsLayerFailure(t *testing.T) {
	failing := newStubOrderStore()
	failing.saveErr = errors.New("layer down")
	healthy := newStubOrderStore()
	composite := NewCompositeOrderStore(failing, healthy)

	err := composite.Save(testOrder(1))
	if err == nil {
		t.Fatal("expected the layer failure to surface")
	}

	// The healthy layer still took the write
	if _, err := healthy.Get(1); err != nil {
		t.Error("healthy layer missed the write")
	}
}

type stubTradeStore struct {
	trades []*types.Trade
}

func (s *stubTradeStore) Save(trade *types.Trade) error {
	s.trades = append(s.trades, trade)
	return nil
}

func (s *stubTradeStore) SaveBatch(trades []*types.Trade) error {
	s.trades = append(s.trades, trades...)
	return nil
}

func (s *stubTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}
	out := make([]*types.Trade, 0, limit)
	for i := len(s.trades) - 1; i >= len(s.trades)-limit; i-- {
		out = append(out, s.trades[i])
	}
	return out, nil
}

func (s *stubTradeStore) Close() error { return nil }

func TestCompositeTradeStoreFanOutAndFirstHit(t *testing.T) {
	l1 := &stubTradeStore{}
	l2 := &stubTradeStore{}
	composite := NewCompositeTradeStore(l1, l2)

	trade := &types.Trade{ID: 1, ExecutionPrice: decimal.RequireFromString("50.00"), Quantity: 2}
	if err := composite.SaveBatch([]*types.Trade{trade}); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	if len(l1.trades) != 1 || len(l2.trades) != 1 {
		t.Error("trade not written to every layer")
	}

	got, err := composite.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("wrong trades: %v", got)
	}

	// Empty first layer falls through to the next
	l1.trades = nil
	got, err = composite.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected fallthrough read to find 1 trade, got %d", len(got))
	}
}
