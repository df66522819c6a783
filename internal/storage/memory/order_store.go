package memory

import (
	"sync"

	"github.com/slabmarket/matching-engine/internal/storage"
	"github.com/slabmarket/matching-engine/internal/types"
)

// InMemoryOrderStore keeps orders in a map guarded by an RWMutex. The
// fastest layer of a composite store.
type InMemoryOrderStore struct {
	orders map[uint64]*types.Order
	bySeq  []*types.Order
	mutex  sync.RWMutex
}

// NewInMemoryOrderStore creates an empty in-memory order store
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		orders: make(map[uint64]*types.Order),
	}
}

func (s *InMemoryOrderStore) Save(order *types.Order) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.orders[order.ID]; !exists {
		s.bySeq = append(s.bySeq, order)
	}
	s.orders[order.ID] = order
	return nil
}

func (s *InMemoryOrderStore) Get(orderID uint64) (*types.Order, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	order, exists := s.orders[orderID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return order, nil
}

func (s *InMemoryOrderStore) Update(order *types.Order) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, exists := s.orders[order.ID]
	if !exists {
		return storage.ErrNotFound
	}
	*stored = *order
	return nil
}

func (s *InMemoryOrderStore) GetAll() []*types.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	orders := make([]*types.Order, len(s.bySeq))
	copy(orders, s.bySeq)
	return orders
}

func (s *InMemoryOrderStore) GetOpen() []*types.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var orders []*types.Order
	for _, order := range s.bySeq {
		if order.IsOpen() {
			orders = append(orders, order)
		}
	}
	return orders
}

func (s *InMemoryOrderStore) GetBySide(side types.Side) []*types.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var orders []*types.Order
	for _, order := range s.bySeq {
		if order.Side == side {
			orders = append(orders, order)
		}
	}
	return orders
}

func (s *InMemoryOrderStore) Close() error {
	return nil
}
