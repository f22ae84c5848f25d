package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

func testEntry(seq int64, before, amount string) *domain.Entry {
	return &domain.Entry{
		ID:            "e" + decimal.NewFromInt(seq).String(),
		WalletID:      "w1",
		Sequence:      seq,
		Type:          domain.EntryTypeDeposit,
		BalanceBefore: decimal.RequireFromString(before),
		Amount:        decimal.RequireFromString(amount),
		CreatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEntryCache_GetMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewEntryCache(client, "w1", time.Minute)
	entry, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected miss, got %+v", entry)
	}
}

func TestEntryCache_PutAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewEntryCache(client, "w1", time.Minute)
	ctx := context.Background()

	want := testEntry(2, "100", "524.74")
	if err := cache.Put(ctx, want); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != want.ID || got.Sequence != 2 || got.Type != domain.EntryTypeDeposit {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !got.BalanceAfter().Equal(decimal.RequireFromString("624.74")) {
		t.Fatalf("expected balance 624.74, got %s", got.BalanceAfter())
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("expected created_at %s, got %s", want.CreatedAt, got.CreatedAt)
	}

	if ttl := mr.TTL("wallet:w1:last_entry"); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %s", ttl)
	}
}

func TestEntryCache_PutKeepsSameSequence(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewEntryCache(client, "w1", time.Minute)
	ctx := context.Background()

	if err := cache.Put(ctx, testEntry(3, "624.74", "-200")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := cache.Put(ctx, testEntry(3, "0", "1")); err != nil {
		t.Fatalf("same-sequence put failed: %v", err)
	}

	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Sequence != 3 || !got.BalanceAfter().Equal(decimal.RequireFromString("424.74")) {
		t.Fatalf("expected sequence 3 with balance 424.74, got %d / %s", got.Sequence, got.BalanceAfter())
	}
}

func TestEntryCache_PutOlderSequenceDropsEntry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewEntryCache(client, "w1", time.Minute)
	ctx := context.Background()

	// Sequence 2 cached, then the ledger restarts and appends sequence 1.
	if err := cache.Put(ctx, testEntry(2, "100", "50")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := cache.Put(ctx, testEntry(1, "0", "10")); err != nil {
		t.Fatalf("older put failed: %v", err)
	}

	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected cache to be dropped, got sequence %d balance %s", got.Sequence, got.BalanceAfter())
	}

	if err := cache.Put(ctx, testEntry(1, "0", "10")); err != nil {
		t.Fatalf("refill failed: %v", err)
	}
	got, err = cache.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || !got.BalanceAfter().Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected refilled entry with balance 10, got %+v", got)
	}
}

func TestEntryCache_Invalidate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewEntryCache(client, "w1", time.Minute)
	ctx := context.Background()

	if err := cache.Put(ctx, testEntry(1, "0", "100")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if mr.Exists("wallet:w1:last_entry") {
		t.Fatalf("expected key to be deleted")
	}

	mr.SetError("LOADING")
	defer mr.SetError("")
	if err := cache.Invalidate(ctx); err == nil {
		t.Fatalf("expected invalidate error while redis fails")
	}
}

func TestEntryCache_ScopesAreIsolated(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	first := NewEntryCache(client, "w1:instance-a", time.Minute)
	second := NewEntryCache(client, "w1:instance-b", time.Minute)

	if err := first.Put(ctx, testEntry(2, "100", "50")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := second.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss in another scope, got %+v", got)
	}
}

func TestEntryCache_ZeroTTLDoesNotExpire(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewEntryCache(client, "w1", 0)
	if err := cache.Put(context.Background(), testEntry(1, "0", "100")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if ttl := mr.TTL("wallet:w1:last_entry"); ttl != 0 {
		t.Fatalf("expected no ttl, got %s", ttl)
	}
}

func TestEntryCache_ExpiredEntryIsMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewEntryCache(client, "w1", time.Second)
	ctx := context.Background()

	if err := cache.Put(ctx, testEntry(1, "0", "100")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	mr.FastForward(2 * time.Second)

	entry, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected miss after expiry, got %+v", entry)
	}
}

func TestEntryCache_CorruptValue(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	mr.HSet("wallet:w1:last_entry", "seq", "1", "entry", "not-json")

	cache := NewEntryCache(client, "w1", time.Minute)
	if _, err := cache.Get(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
