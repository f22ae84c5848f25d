package usecase

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInconsistentLedger is returned when an entry does not follow its predecessor.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: entry does not follow its predecessor")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency verifies that every entry's balance before equals the
// previous entry's balance after, with no gaps in the sequence.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	broken, err := uc.ledgerRepo.FirstBrokenSequence(ctx)
	if err != nil {
		return false, unavailable(err)
	}

	if broken != 0 {
		return false, fmt.Errorf("%w: sequence %d", ErrInconsistentLedger, broken)
	}

	return true, nil
}
