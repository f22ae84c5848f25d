package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/repository/postgres"
	"github.com/iho/gowallet/internal/domain"
	infra "github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
	"github.com/iho/gowallet/internal/usecase"
)

// TestDB provides a migrated database connection for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is
// skipped when DATABASE_URL is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	migrationsPath := "internal/infrastructure/postgres/migrations"
	for _, candidate := range []string{migrationsPath, "../../" + migrationsPath, "../../../" + migrationsPath} {
		if _, err := os.Stat(candidate); err == nil {
			migrationsPath = candidate
			break
		}
	}

	if err := infra.RunMigrations(dbURL, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// NewWalletID returns a wallet ID unique to this run, so tests never see
// each other's entries.
func NewWalletID() string {
	return "test-" + ulid.Make().String()
}

// NewWalletUseCase wires a WalletUseCase against the test database.
func (db *TestDB) NewWalletUseCase(walletID string) *usecase.WalletUseCase {
	return usecase.NewWalletUseCase(usecase.WalletConfig{
		TxManager: postgres.NewTxManager(db.Pool),
		EntryRepo: postgres.NewEntryRepository(db.Pool, walletID),
		IDGen:     postgres.NewULIDGenerator(),
		Retrier:   postgres.NewRetrier(zerolog.Nop()),
		WalletID:  walletID,
	})
}

// InsertRawEntry writes an entry directly, bypassing the balance engine.
func (db *TestDB) InsertRawEntry(ctx context.Context, e domain.Entry) {
	db.t.Helper()

	var before, amount pgtype.Numeric
	if err := before.Scan(e.BalanceBefore.String()); err != nil {
		db.t.Fatalf("invalid balance_before: %v", err)
	}
	if err := amount.Scan(e.Amount.String()); err != nil {
		db.t.Fatalf("invalid amount: %v", err)
	}

	err := db.Queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:            ulid.Make().String(),
		WalletID:      e.WalletID,
		Sequence:      e.Sequence,
		EntryType:     string(e.Type),
		BalanceBefore: before,
		Amount:        amount,
		CreatedAt:     pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
	if err != nil {
		db.t.Fatalf("failed to insert entry: %v", err)
	}
}
