package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
)

const maxErrorBody = 200

var (
	baseURL string
	timeout time.Duration

	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gowallet-cli",
		Short:         "GoWallet CLI tool",
		Long:          `A command line interface for the GoWallet API and its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoWallet API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(balanceCmd(), transactionCmd("deposit", "Deposit funds"), transactionCmd("withdraw", "Withdraw funds"))

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())
	rootCmd.AddCommand(ledgerCmd)

	rootCmd.AddCommand(migrateCmd())

	return rootCmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BalanceResponse
			if err := newAPIClient().do(cmd.Context(), http.MethodGet, "/onlinewallet/balance", nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func transactionCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			if err := domain.ValidateAmount(amount); err != nil {
				return err
			}

			var resp dto.BalanceResponse
			body := dto.AmountRequest{Amount: &amount}
			if err := newAPIClient().do(cmd.Context(), http.MethodPost, "/onlinewallet/"+name, body, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.ConsistencyResponse
			if err := newAPIClient().do(cmd.Context(), http.MethodGet, "/onlinewallet/ledger/consistency", nil, &result); err != nil {
				return fmt.Errorf("consistency check FAILED: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Consistency check PASSED\n")
			fmt.Fprintf(out, "Consistent: %v\n", result.Consistent)
			fmt.Fprintf(out, "Status: %s\n", result.Status)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations against DATABASE_URL",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")

	run := func(action string, fn func(databaseURL, migrationsPath string) error) *cobra.Command {
		return &cobra.Command{
			Use:   action,
			Short: "Migrate " + action,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				migrationsPath := cfg.MigrationsPath
				if path != "" {
					migrationsPath = path
				}
				if err := fn(cfg.DatabaseURL, migrationsPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", action)
				return nil
			},
		}
	}

	cmd.AddCommand(run("up", migrateUp), run("down", migrateDown))
	return cmd
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(raw), maxErrorBody))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
