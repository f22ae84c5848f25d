package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// EntryRepository defines data access for the wallet ledger.
// GetLast and GetLastForUpdate return a nil entry when the ledger is empty.
type EntryRepository interface {
	GetLast(ctx context.Context) (*domain.Entry, error)
	GetLastForUpdate(ctx context.Context, tx Transaction) (*domain.Entry, error)
	Append(ctx context.Context, tx Transaction, entry *domain.Entry) error
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// FirstBrokenSequence returns the sequence of the first entry that does
	// not follow its predecessor, or 0 when the chain is intact.
	FirstBrokenSequence(ctx context.Context) (int64, error)
}

// Transaction represents a repository transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle. Transactions must be
// serialized per wallet: a second Begin either waits or its append fails
// with an error the Retrier recognizes.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// EntryCache keeps the wallet's last entry close at hand.
// Get returns a nil entry on a miss. Put only ever moves the cache forward;
// an entry older than the cached one empties the cache.
type EntryCache interface {
	Get(ctx context.Context) (*domain.Entry, error)
	Put(ctx context.Context, entry *domain.Entry) error
	Invalidate(ctx context.Context) error
}

// MetricsRecorder receives wallet transaction outcomes.
type MetricsRecorder interface {
	ObserveTransaction(entryType domain.EntryType, kind domain.ErrorKind, amount decimal.Decimal, elapsed time.Duration)
	SetBalance(balance decimal.Decimal)
}

// IdempotencyStore remembers responses to requests carrying an idempotency key.
type IdempotencyStore interface {
	// Reserve claims key for a new request. When the key already holds a
	// completed response it is returned with reserved == false. A key that is
	// reserved but not completed yields (nil, false, nil).
	Reserve(ctx context.Context, key string, ttl time.Duration) (cached []byte, reserved bool, err error)
	// Complete stores the final response for a reserved key.
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a reservation so the request can be retried.
	Release(ctx context.Context, key string) error
}
