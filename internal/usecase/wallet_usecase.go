package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// DefaultWalletID identifies the wallet when none is configured.
const DefaultWalletID = "default"

// WalletUseCase derives the wallet balance from the ledger and processes
// deposits and withdrawals against it.
type WalletUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	idGen     IDGenerator
	retrier   Retrier
	cache     EntryCache
	metrics   MetricsRecorder
	logger    zerolog.Logger
	walletID  string
	now       func() time.Time

	// cacheSuspect is set when a committed entry could neither be cached nor
	// evicted. Reads bypass the cache until a write to it succeeds again.
	cacheSuspect atomic.Bool
}

// WalletConfig for WalletUseCase. TxManager, EntryRepo and IDGen are required.
type WalletConfig struct {
	TxManager TransactionManager
	EntryRepo EntryRepository
	IDGen     IDGenerator
	Retrier   Retrier         // nil runs each transaction once
	Cache     EntryCache      // nil disables caching
	Metrics   MetricsRecorder // nil disables metrics
	Logger    *zerolog.Logger
	WalletID  string
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(cfg WalletConfig) *WalletUseCase {
	if cfg.Retrier == nil {
		cfg.Retrier = runOnce{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.WalletID == "" {
		cfg.WalletID = DefaultWalletID
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &WalletUseCase{
		txManager: cfg.TxManager,
		entryRepo: cfg.EntryRepo,
		idGen:     cfg.IDGen,
		retrier:   cfg.Retrier,
		cache:     cfg.Cache,
		metrics:   cfg.Metrics,
		logger:    logger.With().Str("wallet_id", cfg.WalletID).Logger(),
		walletID:  cfg.WalletID,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	Amount decimal.Decimal
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	Amount decimal.Decimal
}

// GetBalance returns the current balance. The only possible error is
// domain.ErrRepositoryUnavailable.
func (uc *WalletUseCase) GetBalance(ctx context.Context) (domain.Balance, error) {
	if last := uc.cached(ctx); last != nil {
		return domain.BalanceOf(last), nil
	}

	last, err := uc.entryRepo.GetLast(ctx)
	if err != nil {
		return domain.Balance{}, unavailable(err)
	}

	uc.remember(ctx, last)

	return domain.BalanceOf(last), nil
}

// Deposit adds funds to the wallet.
func (uc *WalletUseCase) Deposit(ctx context.Context, input DepositInput) (domain.Balance, error) {
	return uc.process(ctx, domain.Deposit{Amount: input.Amount})
}

// Withdraw removes funds from the wallet.
func (uc *WalletUseCase) Withdraw(ctx context.Context, input WithdrawInput) (domain.Balance, error) {
	return uc.process(ctx, domain.Withdrawal{Amount: input.Amount})
}

func (uc *WalletUseCase) process(ctx context.Context, req domain.TransactionRequest) (domain.Balance, error) {
	start := time.Now()
	entry, err := uc.execute(ctx, req)
	kind := domain.KindOf(err)
	uc.metrics.ObserveTransaction(req.Type(), kind, req.Magnitude(), time.Since(start))

	if err != nil {
		switch kind {
		case domain.KindRepositoryUnavailable, domain.KindOverflow:
			uc.logger.Error().Err(err).Str("type", string(req.Type())).Str("kind", kind.String()).Msg("transaction failed")
		default:
			uc.logger.Debug().Err(err).Str("type", string(req.Type())).Str("kind", kind.String()).Msg("transaction rejected")
		}
		return domain.Balance{}, err
	}

	balance := domain.BalanceOf(entry)
	uc.metrics.SetBalance(balance.Amount)
	uc.remember(ctx, entry)

	uc.logger.Debug().
		Str("entry_id", entry.ID).
		Int64("sequence", entry.Sequence).
		Str("type", string(entry.Type)).
		Str("amount", entry.Amount.String()).
		Str("balance", balance.Amount.String()).
		Msg("entry appended")

	return balance, nil
}

// execute validates the request and runs read-validate-append as one unit,
// re-running the whole unit on transient conflicts.
func (uc *WalletUseCase) execute(ctx context.Context, req domain.TransactionRequest) (*domain.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	var appended *domain.Entry
	err := uc.retrier.Retry(ctx, func() error {
		entry, err := uc.appendOnce(ctx, req)
		if err != nil {
			return err
		}
		appended = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	return appended, nil
}

func (uc *WalletUseCase) appendOnce(ctx context.Context, req domain.TransactionRequest) (*domain.Entry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	defer tx.Rollback(ctx)

	last, err := uc.entryRepo.GetLastForUpdate(ctx, tx)
	if err != nil {
		return nil, unavailable(err)
	}

	entry, err := req.Apply(last)
	if err != nil {
		return nil, err
	}

	entry.ID = uc.idGen.Generate()
	entry.WalletID = uc.walletID
	entry.CreatedAt = uc.now()

	if err := uc.entryRepo.Append(ctx, tx, entry); err != nil {
		return nil, unavailable(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, unavailable(err)
	}

	return entry, nil
}

func (uc *WalletUseCase) cached(ctx context.Context) *domain.Entry {
	if uc.cache == nil || uc.cacheSuspect.Load() {
		return nil
	}

	last, err := uc.cache.Get(ctx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("entry cache read failed")
		return nil
	}

	return last
}

// remember writes entry to the cache, detached from request cancellation.
// While the cache is suspect it is emptied before anything new is stored.
func (uc *WalletUseCase) remember(ctx context.Context, entry *domain.Entry) {
	if uc.cache == nil || entry == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CacheWriteTimeout)
	defer cancel()

	if uc.cacheSuspect.Load() {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.logger.Warn().Err(err).Msg("entry cache still unreachable")
			return
		}
		uc.cacheSuspect.Store(false)
	}

	if err := uc.cache.Put(ctx, entry); err != nil {
		uc.logger.Warn().Err(err).Int64("sequence", entry.Sequence).Msg("entry cache write failed")
		uc.evict(ctx, entry.Sequence)
	}
}

func (uc *WalletUseCase) evict(ctx context.Context, sequence int64) {
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.cacheSuspect.Store(true)
		uc.logger.Error().Err(err).Int64("sequence", sequence).Msg("entry cache eviction failed, bypassing cache")
	}
}

// unavailable marks a storage failure, keeping the cause in the chain.
func unavailable(err error) error {
	if errors.Is(err, domain.ErrRepositoryUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrRepositoryUnavailable, err)
}

type runOnce struct{}

func (runOnce) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type nopMetrics struct{}

func (nopMetrics) ObserveTransaction(domain.EntryType, domain.ErrorKind, decimal.Decimal, time.Duration) {
}

func (nopMetrics) SetBalance(decimal.Decimal) {}
