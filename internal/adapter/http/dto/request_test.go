package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

func TestAmountRequest_Decode(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"json number", `{"amount": 524.74}`, "524.74"},
		{"numeric string", `{"amount": "200"}`, "200"},
		{"max balance", `{"amount": 79228162514264337593543950335}`, domain.MaxBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AmountRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if err := req.Validate(); err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if !req.ToDepositInput().Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected %s, got %s", tt.want, req.ToDepositInput().Amount)
			}
		})
	}
}

func TestAmountRequest_Validate(t *testing.T) {
	negative := decimal.NewFromInt(-1)
	zero := decimal.Zero

	tests := []struct {
		name    string
		request AmountRequest
		wantErr error
	}{
		{"missing amount", AmountRequest{}, ErrMissingAmount},
		{"negative amount", AmountRequest{Amount: &negative}, domain.ErrOutOfRange},
		{"zero amount", AmountRequest{Amount: &zero}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAmountRequest_ToWithdrawInput(t *testing.T) {
	amount := decimal.RequireFromString("10000")
	req := AmountRequest{Amount: &amount}

	if got := req.ToWithdrawInput(); !got.Amount.Equal(amount) {
		t.Fatalf("expected %s, got %s", amount, got.Amount)
	}
}

func TestAmountRequest_MarshalsNumber(t *testing.T) {
	amount := decimal.RequireFromString("524.74")

	raw, err := json.Marshal(AmountRequest{Amount: &amount})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `{"amount":524.74}` {
		t.Fatalf("unexpected body: %s", raw)
	}

	raw, err = json.Marshal(AmountRequest{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `{"amount":null}` {
		t.Fatalf("unexpected body for missing amount: %s", raw)
	}
}
