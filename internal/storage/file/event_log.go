package file

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/slabmarket/matching-engine/internal/types"
)

// FileEventLog is the append-only accepted-order log, one JSON record per
// line. Appends are synchronous so the on-disk order always matches the
// engine's admission order; replaying the file rebuilds the book exactly.
type FileEventLog struct {
	path  string
	file  *os.File
	mutex sync.Mutex
}

// NewFileEventLog opens (or creates) the event log at path
func NewFileEventLog(path string) (*FileEventLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &FileEventLog{path: path, file: file}, nil
}

func (l *FileEventLog) Append(event *types.OrderEvent) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// ReadAll reads every event in append order. Opens its own read handle so it
// can run against a log that is still being appended to.
func (l *FileEventLog) ReadAll() ([]types.OrderEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open event log for read: %w", err)
	}
	defer f.Close()

	var events []types.OrderEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev types.OrderEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("corrupt event log record: %w", err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (l *FileEventLog) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.file.Close()
}
