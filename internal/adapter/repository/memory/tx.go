package memory

import (
	"context"
	"errors"

	"github.com/iho/gowallet/internal/domain"
)

// ErrTxClosed is returned when a finished transaction is used.
var ErrTxClosed = errors.New("transaction already closed")

// Tx is a Store transaction. It holds the store's write slot until it ends.
type Tx struct {
	store   *Store
	staged  *domain.Entry
	pending []domain.Entry
	done    bool
}

// Commit publishes staged entries and releases the write slot.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxClosed
	}

	t.store.mu.Lock()
	t.store.entries = append(t.store.entries, t.pending...)
	t.store.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards staged entries. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}

	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.staged = nil
	t.pending = nil
	<-t.store.sem
}
