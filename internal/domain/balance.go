package domain

import "github.com/shopspring/decimal"

// MaxBalance is the largest balance the wallet can hold (2^96 - 1).
const MaxBalance = "79228162514264337593543950335"

var maxBalance = decimal.RequireFromString(MaxBalance)

// MaxBalanceDecimal returns MaxBalance as a decimal.
func MaxBalanceDecimal() decimal.Decimal {
	return maxBalance
}

// Balance is the current wallet balance. It is never stored, only derived
// from the last ledger entry.
type Balance struct {
	Amount decimal.Decimal
}

// BalanceOf derives the balance from the most recent entry.
// A nil entry means the ledger is empty.
func BalanceOf(last *Entry) Balance {
	if last == nil {
		return Balance{Amount: decimal.Zero}
	}

	return Balance{Amount: last.BalanceAfter()}
}

// WithinRange reports whether a balance is representable.
func WithinRange(amount decimal.Decimal) bool {
	return !amount.IsNegative() && amount.LessThanOrEqual(maxBalance)
}
