package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

type walletServiceStub struct {
	balanceFn  func(ctx context.Context) (domain.Balance, error)
	depositFn  func(ctx context.Context, input usecase.DepositInput) (domain.Balance, error)
	withdrawFn func(ctx context.Context, input usecase.WithdrawInput) (domain.Balance, error)
}

func (s *walletServiceStub) GetBalance(ctx context.Context) (domain.Balance, error) {
	return s.balanceFn(ctx)
}

func (s *walletServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (domain.Balance, error) {
	return s.depositFn(ctx, input)
}

func (s *walletServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (domain.Balance, error) {
	return s.withdrawFn(ctx, input)
}

func balanceOf(v string) domain.Balance {
	return domain.Balance{Amount: decimal.RequireFromString(v)}
}

func decodeBalance(t *testing.T, rec *httptest.ResponseRecorder) decimal.Decimal {
	t.Helper()
	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Amount
}

func TestWalletHandler_Balance(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		balanceFn: func(ctx context.Context) (domain.Balance, error) { return balanceOf("424.74"), nil },
	})

	rec := httptest.NewRecorder()
	handler.Balance(rec, httptest.NewRequest(http.MethodGet, "/onlinewallet/balance", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBalance(t, rec); !got.Equal(decimal.RequireFromString("424.74")) {
		t.Fatalf("expected 424.74, got %s", got)
	}
	if !strings.Contains(rec.Body.String(), `"amount":424.74`) {
		t.Fatalf("expected amount as a JSON number, got %s", rec.Body.String())
	}
}

func TestWalletHandler_BalanceUnavailable(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		balanceFn: func(ctx context.Context) (domain.Balance, error) {
			return domain.Balance{}, fmt.Errorf("%w: connection refused", domain.ErrRepositoryUnavailable)
		},
	})

	rec := httptest.NewRecorder()
	handler.Balance(rec, httptest.NewRequest(http.MethodGet, "/onlinewallet/balance", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestWalletHandler_Deposit(t *testing.T) {
	var captured usecase.DepositInput
	handler := NewWalletHandler(&walletServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (domain.Balance, error) {
			captured = input
			return balanceOf("624.74"), nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/onlinewallet/deposit", strings.NewReader(`{"amount": 524.74}`))
	rec := httptest.NewRecorder()
	handler.Deposit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !captured.Amount.Equal(decimal.RequireFromString("524.74")) {
		t.Fatalf("expected deposit of 524.74, got %s", captured.Amount)
	}
	if got := decodeBalance(t, rec); !got.Equal(decimal.RequireFromString("624.74")) {
		t.Fatalf("expected 624.74, got %s", got)
	}
}

func TestWalletHandler_DepositRejectsBadBodies(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (domain.Balance, error) {
			t.Fatalf("service must not be called")
			return domain.Balance{}, nil
		},
	})

	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"malformed json", `{"amount":`, "invalid request body"},
		{"missing amount", `{}`, "invalid request body"},
		{"not a number", `{"amount": "abc"}`, "invalid request body"},
		{"negative amount", `{"amount": -1}`, "out_of_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/onlinewallet/deposit", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.Deposit(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}

			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Fatalf("expected error %q, got %q", tt.wantError, resp.Error)
			}
		})
	}
}

func TestWalletHandler_RejectsOversizedBody(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (domain.Balance, error) {
			t.Fatalf("service must not be called")
			return domain.Balance{}, nil
		},
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (domain.Balance, error) {
			t.Fatalf("service must not be called")
			return domain.Balance{}, nil
		},
	})

	body := `{"amount": 1` + strings.Repeat("0", 2*MaxAmountBodyBytes) + `}`

	for path, serve := range map[string]http.HandlerFunc{
		"/onlinewallet/deposit":  handler.Deposit,
		"/onlinewallet/withdraw": handler.Withdraw,
	} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			serve(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))

			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("expected 413, got %d", rec.Code)
			}
			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Error != "request body too large" {
				t.Fatalf("unexpected error %q", resp.Error)
			}
		})
	}
}

func TestWalletHandler_DepositOverflow(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (domain.Balance, error) {
			return domain.Balance{}, domain.ErrOverflow
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/onlinewallet/deposit", strings.NewReader(`{"amount": 2}`))
	rec := httptest.NewRecorder()
	handler.Deposit(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestWalletHandler_Withdraw(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (domain.Balance, error) {
			if !input.Amount.Equal(decimal.NewFromInt(200)) {
				t.Fatalf("expected withdrawal of 200, got %s", input.Amount)
			}
			return balanceOf("424.74"), nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/onlinewallet/withdraw", strings.NewReader(`{"amount": 200}`))
	rec := httptest.NewRecorder()
	handler.Withdraw(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBalance(t, rec); !got.Equal(decimal.RequireFromString("424.74")) {
		t.Fatalf("expected 424.74, got %s", got)
	}
}

func TestWalletHandler_WithdrawInsufficientFunds(t *testing.T) {
	handler := NewWalletHandler(&walletServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (domain.Balance, error) {
			return domain.Balance{}, domain.ErrInsufficientBalance
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/onlinewallet/withdraw", strings.NewReader(`{"amount": 10000}`))
	rec := httptest.NewRecorder()
	handler.Withdraw(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Message != domain.InsufficientFundsMessage {
		t.Fatalf("expected insufficient funds message, got %q", resp.Message)
	}
}
