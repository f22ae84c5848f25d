package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidateAmount validates a deposit/withdrawal magnitude.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrOutOfRange, amount.String())
	}

	return nil
}

// ValidateChain checks that entries, oldest first, form a gap-free chain
// whose balances stay within range. It returns the index of the first
// offending entry, or -1.
func ValidateChain(entries []*Entry) int {
	var prev *Entry
	for i, e := range entries {
		if !e.Follows(prev) || !WithinRange(e.BalanceAfter()) {
			return i
		}
		prev = e
	}

	return -1
}
