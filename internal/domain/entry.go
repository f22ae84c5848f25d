package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType tells which kind of request produced an entry.
type EntryType string

const (
	EntryTypeDeposit    EntryType = "deposit"
	EntryTypeWithdrawal EntryType = "withdrawal"
)

// Entry is one immutable record in the wallet ledger.
// Amount is the signed delta the entry applies to BalanceBefore.
type Entry struct {
	CreatedAt     time.Time
	ID            string
	WalletID      string
	Type          EntryType
	Sequence      int64
	BalanceBefore decimal.Decimal
	Amount        decimal.Decimal
}

// BalanceAfter returns the balance once this entry is applied.
func (e *Entry) BalanceAfter() decimal.Decimal {
	return e.BalanceBefore.Add(e.Amount)
}

// Follows reports whether e is a valid successor of prev.
// A nil prev means e must be the first entry of the ledger.
func (e *Entry) Follows(prev *Entry) bool {
	if prev == nil {
		return e.Sequence == 1 && e.BalanceBefore.IsZero()
	}

	return e.Sequence == prev.Sequence+1 && e.BalanceBefore.Equal(prev.BalanceAfter())
}
