package dto

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// ErrMissingAmount is returned when a request body has no amount.
var ErrMissingAmount = errors.New("amount is required")

// AmountRequest is the body of deposit and withdrawal requests.
// Amount accepts both JSON numbers and numeric strings.
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// MarshalJSON writes Amount as a JSON number.
func (r AmountRequest) MarshalJSON() ([]byte, error) {
	var amount *json.Number
	if r.Amount != nil {
		n := json.Number(r.Amount.String())
		amount = &n
	}
	return json.Marshal(struct {
		Amount *json.Number `json:"amount"`
	}{Amount: amount})
}

// Validate rejects a missing or negative amount.
func (r *AmountRequest) Validate() error {
	if r.Amount == nil {
		return ErrMissingAmount
	}

	return domain.ValidateAmount(*r.Amount)
}

// ToDepositInput converts to use case input.
func (r *AmountRequest) ToDepositInput() usecase.DepositInput {
	return usecase.DepositInput{Amount: r.amount()}
}

// ToWithdrawInput converts to use case input.
func (r *AmountRequest) ToWithdrawInput() usecase.WithdrawInput {
	return usecase.WithdrawInput{Amount: r.amount()}
}

func (r *AmountRequest) amount() decimal.Decimal {
	if r.Amount == nil {
		return decimal.Zero
	}
	return *r.Amount
}
