package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// putIfNewer stores the entry only when its sequence is strictly greater
// than the cached one. A lower sequence means the ledger no longer matches
// what is cached, so the key is dropped.
var putIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'seq')
if current then
  local cur = tonumber(current)
  local seq = tonumber(ARGV[1])
  if cur == seq then
    return 0
  end
  if cur > seq then
    redis.call('DEL', KEYS[1])
    return -1
  end
end
redis.call('HSET', KEYS[1], 'seq', ARGV[1], 'entry', ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// EntryCache implements usecase.EntryCache using a Redis hash per wallet.
type EntryCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewEntryCache creates a new EntryCache. scope names the ledger the entries
// come from, usually the wallet ID. A zero ttl keeps entries until they are
// replaced.
func NewEntryCache(client *redis.Client, scope string, ttl time.Duration) *EntryCache {
	return &EntryCache{
		client: client,
		key:    "wallet:" + scope + ":last_entry",
		ttl:    ttl,
	}
}

type cachedEntry struct {
	ID            string          `json:"id"`
	WalletID      string          `json:"wallet_id"`
	Sequence      int64           `json:"sequence"`
	Type          string          `json:"type"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Get returns the cached last entry, or nil on a miss.
func (c *EntryCache) Get(ctx context.Context) (*domain.Entry, error) {
	raw, err := c.client.HGet(ctx, c.key, "entry").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached cachedEntry
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode cached entry: %w", err)
	}

	return &domain.Entry{
		ID:            cached.ID,
		WalletID:      cached.WalletID,
		Sequence:      cached.Sequence,
		Type:          domain.EntryType(cached.Type),
		BalanceBefore: cached.BalanceBefore,
		Amount:        cached.Amount,
		CreatedAt:     cached.CreatedAt,
	}, nil
}

// Put caches entry when it is newer than the cached one and drops the cache
// when it is older.
func (c *EntryCache) Put(ctx context.Context, entry *domain.Entry) error {
	raw, err := json.Marshal(cachedEntry{
		ID:            entry.ID,
		WalletID:      entry.WalletID,
		Sequence:      entry.Sequence,
		Type:          string(entry.Type),
		BalanceBefore: entry.BalanceBefore,
		Amount:        entry.Amount,
		CreatedAt:     entry.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	return putIfNewer.Run(ctx, c.client, []string{c.key}, entry.Sequence, raw, c.ttl.Milliseconds()).Err()
}

// Invalidate drops the cached entry.
func (c *EntryCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
