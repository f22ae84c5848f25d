package redis

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/repository/memory"
	"github.com/iho/gowallet/internal/usecase"
)

type seqIDs struct{ n atomic.Int64 }

func (g *seqIDs) Generate() string { return "id-" + strconv.FormatInt(g.n.Add(1), 10) }

func newCachedWallet(cache *EntryCache) *usecase.WalletUseCase {
	store := memory.NewStore()
	return usecase.NewWalletUseCase(usecase.WalletConfig{
		TxManager: store,
		EntryRepo: store,
		IDGen:     &seqIDs{},
		Cache:     cache,
		WalletID:  "w1",
	})
}

func mustBalance(t *testing.T, uc *usecase.WalletUseCase, want string) {
	t.Helper()
	balance, err := uc.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if !balance.Amount.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected balance %s, got %s", want, balance.Amount)
	}
}

func TestWalletCache_LedgerResetBehindCache(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	cache := NewEntryCache(client, "w1", time.Minute)

	old := newCachedWallet(cache)
	for _, amount := range []string{"100", "50"} {
		if _, err := old.Deposit(ctx, usecase.DepositInput{Amount: decimal.RequireFromString(amount)}); err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
	}
	mustBalance(t, old, "150")

	// Same cache, new empty ledger: its first entry has a lower sequence.
	fresh := newCachedWallet(cache)
	balance, err := fresh.Deposit(ctx, usecase.DepositInput{Amount: decimal.RequireFromString("10")})
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if !balance.Amount.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected deposit result 10, got %s", balance.Amount)
	}

	mustBalance(t, fresh, "10")
	mustBalance(t, fresh, "10")
}

func TestWalletCache_FailedWriteDoesNotServeOldBalance(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	uc := newCachedWallet(NewEntryCache(client, "w1", time.Minute))

	if _, err := uc.Deposit(ctx, usecase.DepositInput{Amount: decimal.RequireFromString("100")}); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	mr.SetError("transient")
	balance, err := uc.Withdraw(ctx, usecase.WithdrawInput{Amount: decimal.RequireFromString("40")})
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !balance.Amount.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected withdraw result 60, got %s", balance.Amount)
	}
	mr.SetError("")

	mustBalance(t, uc, "60")
	mustBalance(t, uc, "60")

	cached, err := NewEntryCache(client, "w1", time.Minute).Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if cached == nil || cached.Sequence != 2 {
		t.Fatalf("expected cache refilled with sequence 2, got %+v", cached)
	}
}
