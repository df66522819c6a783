package matching

import (
	"fmt"

	"github.com/slabmarket/matching-engine/internal/types"
)

// Replay rebuilds engine state from the accepted-order event log. Events
// must arrive in sequence order; matching is deterministic in the admission
// order so the resulting book is identical to the one that produced the log.
// Call before SetEventLog or every replayed order is appended again.
func Replay(e *Engine, events []types.OrderEvent) error {
	var lastSeq uint64
	for _, ev := range events {
		if ev.Sequence <= lastSeq {
			return fmt.Errorf("event log out of order: sequence %d after %d", ev.Sequence, lastSeq)
		}
		lastSeq = ev.Sequence
		if _, err := e.submit(ev.Side, ev.Price, ev.Quantity, ev.Card, false); err != nil {
			return fmt.Errorf("replay of sequence %d: %w", ev.Sequence, err)
		}
	}
	return nil
}
