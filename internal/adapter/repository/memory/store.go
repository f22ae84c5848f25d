// Package memory holds the wallet ledger in process memory. Transactions are
// serialized: Begin blocks until the previous transaction commits or rolls back.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

var (
	// ErrSequenceConflict is returned when an appended entry does not follow the last one.
	ErrSequenceConflict = errors.New("entry does not follow the last ledger entry")
	// ErrForeignTransaction is returned for transactions not started by this store.
	ErrForeignTransaction = errors.New("transaction does not belong to this store")
)

// Store implements usecase.TransactionManager, usecase.EntryRepository and
// usecase.LedgerRepository.
type Store struct {
	sem chan struct{}

	mu      sync.RWMutex
	entries []domain.Entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sem: make(chan struct{}, 1)}
}

// Begin starts a transaction, waiting for any open one to finish.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case s.sem <- struct{}{}:
		return &Tx{store: s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetLast returns the most recent committed entry, or nil.
func (s *Store) GetLast(_ context.Context) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}

	last := s.entries[len(s.entries)-1]
	return &last, nil
}

// GetLastForUpdate returns the most recent entry as seen by tx.
func (s *Store) GetLastForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Entry, error) {
	t, err := s.own(tx)
	if err != nil {
		return nil, err
	}

	if t.staged != nil {
		staged := *t.staged
		return &staged, nil
	}

	return s.GetLast(ctx)
}

// Append stages entry in tx. It becomes visible on Commit.
func (s *Store) Append(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	last, err := s.GetLastForUpdate(ctx, tx)
	if err != nil {
		return err
	}

	if !entry.Follows(last) {
		return ErrSequenceConflict
	}

	t := tx.(*Tx)
	staged := *entry
	t.staged = &staged
	t.pending = append(t.pending, staged)

	return nil
}

// FirstBrokenSequence returns the position of the first entry that does not
// follow its predecessor, or 0.
func (s *Store) FirstBrokenSequence(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := make([]*domain.Entry, len(s.entries))
	for i := range s.entries {
		chain[i] = &s.entries[i]
	}

	if idx := domain.ValidateChain(chain); idx >= 0 {
		return int64(idx) + 1, nil
	}

	return 0, nil
}

// Len returns the number of committed entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) own(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, ErrForeignTransaction
	}
	if t.done {
		return nil, ErrTxClosed
	}
	return t, nil
}
