package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// MaxAmountBodyBytes caps deposit and withdrawal request bodies.
const MaxAmountBodyBytes = 4 << 10

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	GetBalance(ctx context.Context) (domain.Balance, error)
	Deposit(ctx context.Context, input usecase.DepositInput) (domain.Balance, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (domain.Balance, error)
}

// WalletHandler handles balance, deposit and withdrawal requests.
type WalletHandler struct {
	walletUC WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// Balance returns the current balance.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.walletUC.GetBalance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Deposit adds funds and returns the new balance.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	balance, err := h.walletUC.Deposit(r.Context(), req.ToDepositInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Withdraw removes funds and returns the new balance.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	balance, err := h.walletUC.Withdraw(r.Context(), req.ToWithdrawInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

func decodeAmount(w http.ResponseWriter, r *http.Request) (*dto.AmountRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxAmountBodyBytes)

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", err.Error())
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}

	if err := req.Validate(); err != nil {
		if errors.Is(err, dto.ErrMissingAmount) {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return nil, false
		}
		writeDomainError(w, err)
		return nil, false
	}

	return &req, true
}
