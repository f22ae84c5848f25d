package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
	"github.com/iho/gowallet/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository for one wallet.
type EntryRepository struct {
	queries  *generated.Queries
	walletID string
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool, walletID string) *EntryRepository {
	return newEntryRepositoryWithDB(pool, walletID)
}

func newEntryRepositoryWithDB(db generated.DBTX, walletID string) *EntryRepository {
	return &EntryRepository{
		queries:  generated.New(db),
		walletID: walletID,
	}
}

// GetLast retrieves the most recent entry outside of any transaction.
func (r *EntryRepository) GetLast(ctx context.Context) (*domain.Entry, error) {
	return r.getLast(ctx, r.queries)
}

// GetLastForUpdate takes the wallet's transaction-scoped advisory lock and
// then reads the most recent entry. The lock is held until tx ends.
func (r *EntryRepository) GetLastForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Entry, error) {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return nil, err
	}
	queries := r.queries.WithTx(pgxTx)

	if err := queries.LockWallet(ctx, r.walletID); err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}

	return r.getLast(ctx, queries)
}

// Append inserts entry. A concurrent append of the same sequence fails with
// a unique violation, which the Retrier treats as retryable.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(pgxTx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:            entry.ID,
		WalletID:      r.walletID,
		Sequence:      entry.Sequence,
		EntryType:     string(entry.Type),
		BalanceBefore: decimalToNumeric(entry.BalanceBefore),
		Amount:        decimalToNumeric(entry.Amount),
		CreatedAt:     timeToPgTimestamptz(entry.CreatedAt),
	})
}

func (r *EntryRepository) getLast(ctx context.Context, queries *generated.Queries) (*domain.Entry, error) {
	row, err := queries.GetLastEntry(ctx, r.walletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rowToEntry(row)
}

func rowToEntry(row generated.WalletEntry) (*domain.Entry, error) {
	balanceBefore, err := numericToDecimal(row.BalanceBefore)
	if err != nil {
		return nil, fmt.Errorf("entry %s balance_before: %w", row.ID, err)
	}

	amount, err := numericToDecimal(row.Amount)
	if err != nil {
		return nil, fmt.Errorf("entry %s amount: %w", row.ID, err)
	}

	return &domain.Entry{
		ID:            row.ID,
		WalletID:      row.WalletID,
		Sequence:      row.Sequence,
		Type:          domain.EntryType(row.EntryType),
		BalanceBefore: balanceBefore,
		Amount:        amount,
		CreatedAt:     row.CreatedAt.Time,
	}, nil
}
