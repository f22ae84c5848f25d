package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// BalanceResponse represents the wallet balance in API responses.
// Amount is written as a JSON number with full precision.
type BalanceResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

// MarshalJSON implements json.Marshaler.
func (b BalanceResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount json.Number `json:"amount"`
	}{Amount: json.Number(b.Amount.String())})
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(b domain.Balance) *BalanceResponse {
	return &BalanceResponse{Amount: b.Amount}
}

// ConsistencyResponse reports the result of a ledger consistency check.
type ConsistencyResponse struct {
	Consistent bool   `json:"consistent"`
	Status     string `json:"status"`
	Details    string `json:"details,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
