package domain

import (
	"github.com/shopspring/decimal"
)

// TransactionRequest is a balance-changing request: a Deposit or a Withdrawal.
type TransactionRequest interface {
	// Type returns the entry type the request produces.
	Type() EntryType
	// Magnitude returns the unsigned requested amount.
	Magnitude() decimal.Decimal
	// Validate checks the request on its own, without ledger state.
	Validate() error
	// Apply builds the entry that follows last. ID, WalletID and CreatedAt are
	// left for the caller to fill in.
	Apply(last *Entry) (*Entry, error)
}

// Deposit adds Amount to the balance.
type Deposit struct {
	Amount decimal.Decimal
}

func (d Deposit) Type() EntryType            { return EntryTypeDeposit }
func (d Deposit) Magnitude() decimal.Decimal { return d.Amount }

// Validate rejects negative deposits.
func (d Deposit) Validate() error {
	return ValidateAmount(d.Amount)
}

// Apply computes the deposit entry. Overflow is reported instead of
// producing a balance above MaxBalance.
func (d Deposit) Apply(last *Entry) (*Entry, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	current := BalanceOf(last).Amount
	if !WithinRange(current.Add(d.Amount)) {
		return nil, ErrOverflow
	}

	return &Entry{
		Type:          EntryTypeDeposit,
		Sequence:      nextSequence(last),
		BalanceBefore: current,
		Amount:        d.Amount,
	}, nil
}

// Withdrawal removes Amount from the balance, bounded by available funds.
type Withdrawal struct {
	Amount decimal.Decimal
}

func (w Withdrawal) Type() EntryType            { return EntryTypeWithdrawal }
func (w Withdrawal) Magnitude() decimal.Decimal { return w.Amount }

// Validate rejects negative withdrawals.
func (w Withdrawal) Validate() error {
	return ValidateAmount(w.Amount)
}

// Apply computes the withdrawal entry, stored as a negative delta.
func (w Withdrawal) Apply(last *Entry) (*Entry, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	current := BalanceOf(last).Amount
	if w.Amount.GreaterThan(current) {
		return nil, ErrInsufficientBalance
	}

	return &Entry{
		Type:          EntryTypeWithdrawal,
		Sequence:      nextSequence(last),
		BalanceBefore: current,
		Amount:        w.Amount.Neg(),
	}, nil
}

func nextSequence(last *Entry) int64 {
	if last == nil {
		return 1
	}
	return last.Sequence + 1
}
