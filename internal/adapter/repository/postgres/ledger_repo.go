package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries  *generated.Queries
	walletID string
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool, walletID string) *LedgerRepository {
	return newLedgerRepositoryWithDB(pool, walletID)
}

func newLedgerRepositoryWithDB(db generated.DBTX, walletID string) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db), walletID: walletID}
}

// FirstBrokenSequence returns the sequence of the first entry that breaks
// the balance chain, or 0.
func (r *LedgerRepository) FirstBrokenSequence(ctx context.Context) (int64, error) {
	return r.queries.FirstBrokenSequence(ctx, r.walletID)
}
