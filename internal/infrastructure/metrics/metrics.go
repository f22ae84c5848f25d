package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
)

// Metrics holds the wallet's Prometheus metrics. It implements
// usecase.MetricsRecorder.
type Metrics struct {
	// Transaction metrics
	Transactions        *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	TransactionAmount   *prometheus.HistogramVec

	// Wallet metrics
	Balance prometheus.Gauge
}

// New creates and registers the wallet metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_transactions_total",
				Help: "Total wallet transactions by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		TransactionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_transaction_duration_seconds",
				Help:    "Duration of deposit and withdrawal operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_transaction_amount",
				Help:    "Amounts of successful transactions",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		Balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_balance",
			Help: "Balance after the most recent transaction",
		}),
	}
}

// ObserveTransaction records one deposit or withdrawal attempt.
func (m *Metrics) ObserveTransaction(entryType domain.EntryType, kind domain.ErrorKind, amount decimal.Decimal, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if kind != domain.KindNone {
		outcome = kind.String()
	}

	m.Transactions.WithLabelValues(string(entryType), outcome).Inc()
	m.TransactionDuration.WithLabelValues(string(entryType)).Observe(elapsed.Seconds())

	if kind == domain.KindNone {
		m.TransactionAmount.WithLabelValues(string(entryType)).Observe(amount.InexactFloat64())
	}
}

// SetBalance publishes the current balance. Precision beyond float64 is lost.
func (m *Metrics) SetBalance(balance decimal.Decimal) {
	m.Balance.Set(balance.InexactFloat64())
}
