package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a ledger transaction
	// This prevents a stuck append from holding the wallet lock
	DefaultTransactionTimeout = 10 * time.Second

	// CacheWriteTimeout bounds a cache write or eviction after a commit
	CacheWriteTimeout = 2 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
