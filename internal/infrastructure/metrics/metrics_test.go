package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveTransaction(domain.EntryTypeDeposit, domain.KindNone, decimal.NewFromInt(100), time.Millisecond)
	m.SetBalance(decimal.NewFromInt(100))

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	names := map[string]bool{}
	for _, mf := range metricFamilies {
		names[mf.GetName()] = true
	}

	for _, want := range []string{
		"wallet_transactions_total",
		"wallet_transaction_duration_seconds",
		"wallet_transaction_amount",
		"wallet_balance",
	} {
		if !names[want] {
			t.Fatalf("expected metric %s to be registered, got %v", want, names)
		}
	}
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()
	New(registry)
}

func TestObserveTransactionOutcomes(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransaction(domain.EntryTypeDeposit, domain.KindNone, decimal.NewFromInt(100), time.Millisecond)
	m.ObserveTransaction(domain.EntryTypeWithdrawal, domain.KindInsufficientBalance, decimal.NewFromInt(10000), time.Millisecond)
	m.ObserveTransaction(domain.EntryTypeWithdrawal, domain.KindInsufficientBalance, decimal.NewFromInt(5000), time.Millisecond)

	if got := testutil.ToFloat64(m.Transactions.WithLabelValues("deposit", OutcomeSuccess)); got != 1 {
		t.Fatalf("expected 1 successful deposit, got %v", got)
	}
	if got := testutil.ToFloat64(m.Transactions.WithLabelValues("withdrawal", "insufficient_balance")); got != 2 {
		t.Fatalf("expected 2 rejected withdrawals, got %v", got)
	}
	if got := testutil.CollectAndCount(m.TransactionAmount); got != 1 {
		t.Fatalf("expected amounts only for successful transactions, got %d series", got)
	}
}

func TestSetBalance(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetBalance(decimal.RequireFromString("424.74"))

	if got := testutil.ToFloat64(m.Balance); got != 424.74 {
		t.Fatalf("expected balance gauge 424.74, got %v", got)
	}
}
