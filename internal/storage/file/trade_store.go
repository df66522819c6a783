package file

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/slabmarket/matching-engine/internal/types"
)

// FileTradeStore appends trades to a JSON-lines audit log. Writes are
// asynchronous so the matching engine never waits on disk. The store is
// write-only; pair it with the in-memory trade store in a composite for
// reads.
type FileTradeStore struct {
	file    *os.File
	encoder *json.Encoder
	mutex   sync.Mutex
}

// NewFileTradeStore opens (or creates) the trade audit log at filePath
func NewFileTradeStore(filePath string) (*FileTradeStore, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}

	return &FileTradeStore{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (s *FileTradeStore) Save(trade *types.Trade) error {
	go func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		_ = s.encoder.Encode(trade)
	}()
	return nil
}

func (s *FileTradeStore) SaveBatch(trades []*types.Trade) error {
	go func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		for _, trade := range trades {
			_ = s.encoder.Encode(trade)
		}
	}()
	return nil
}

func (s *FileTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	// Write-only store
	return []*types.Trade{}, nil
}

func (s *FileTradeStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.file.Close()
}
