package domain

import "errors"

// InsufficientFundsMessage is shown to clients when a withdrawal exceeds the balance.
const InsufficientFundsMessage = "Invalid withdrawal amount. There are insufficient funds."

var (
	// Request errors
	ErrOutOfRange          = errors.New("amount must not be negative")
	ErrInsufficientBalance = errors.New(InsufficientFundsMessage)

	// Arithmetic limit
	ErrOverflow = errors.New("resulting balance exceeds the maximum representable value")

	// Storage
	ErrRepositoryUnavailable = errors.New("ledger repository unavailable")
)

// ErrorKind classifies every error the wallet core can return.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindOutOfRange
	KindInsufficientBalance
	KindOverflow
	KindRepositoryUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindOutOfRange:
		return "out_of_range"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindOverflow:
		return "overflow"
	case KindRepositoryUnavailable:
		return "repository_unavailable"
	default:
		return "unknown"
	}
}

// KindOf maps an error returned by the wallet core to its kind.
// Errors outside the wallet taxonomy are treated as repository failures,
// since the store is the only collaborator that can produce them.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrOutOfRange):
		return KindOutOfRange
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrOverflow):
		return KindOverflow
	default:
		return KindRepositoryUnavailable
	}
}
