package memory

import (
	"sync"

	"github.com/slabmarket/matching-engine/internal/types"
)

// InMemoryTradeStore keeps the N most recent trades in a bounded slice
type InMemoryTradeStore struct {
	trades  []*types.Trade
	maxSize int
	mutex   sync.RWMutex
}

// NewInMemoryTradeStore creates a trade store capped at maxSize entries
func NewInMemoryTradeStore(maxSize int) *InMemoryTradeStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &InMemoryTradeStore{
		trades:  make([]*types.Trade, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *InMemoryTradeStore) Save(trade *types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.append(trade)
	return nil
}

func (s *InMemoryTradeStore) SaveBatch(trades []*types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, trade := range trades {
		s.append(trade)
	}
	return nil
}

func (s *InMemoryTradeStore) append(trade *types.Trade) {
	s.trades = append(s.trades, trade)
	if len(s.trades) > s.maxSize {
		s.trades = s.trades[len(s.trades)-s.maxSize:]
	}
}

// GetRecent returns up to limit trades, newest first
func (s *InMemoryTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}

	result := make([]*types.Trade, 0, limit)
	for i := len(s.trades) - 1; i >= len(s.trades)-limit; i-- {
		result = append(result, s.trades[i])
	}
	return result, nil
}

func (s *InMemoryTradeStore) Close() error {
	return nil
}
