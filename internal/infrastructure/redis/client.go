package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const clientName = "gowallet"

// Option tunes how NewClient connects.
type Option func(*connectOptions)

type connectOptions struct {
	attempts    uint64
	interval    time.Duration
	dialTimeout time.Duration
}

// WithAttempts sets how many times the initial ping is retried.
func WithAttempts(n uint64) Option {
	return func(o *connectOptions) { o.attempts = n }
}

// WithRetryInterval sets the initial wait between ping attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(o *connectOptions) { o.interval = d }
}

// WithDialTimeout overrides the dial timeout parsed from the URL.
func WithDialTimeout(d time.Duration) Option {
	return func(o *connectOptions) { o.dialTimeout = d }
}

// NewClient parses redisURL and returns a client that has answered a ping.
// The ping is retried with exponential backoff so the server tolerates
// Redis starting a little after it.
func NewClient(ctx context.Context, redisURL string, opts ...Option) (*redis.Client, error) {
	co := connectOptions{attempts: 3, interval: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(&co)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if redisOpts.ClientName == "" {
		redisOpts.ClientName = clientName
	}
	if co.dialTimeout > 0 {
		redisOpts.DialTimeout = co.dialTimeout
	}

	client := redis.NewClient(redisOpts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = co.interval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, co.attempts), ctx)

	if err := backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, policy); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
