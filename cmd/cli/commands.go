package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type options struct {
	baseURL        string
	timeout        time.Duration
	idempotencyKey string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Telepesa ledger CLI",
		Long:          `A command line interface for the Telepesa account ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency key for mutating requests (generated when empty)")

	rootCmd.AddCommand(
		newAccountCmd(opts),
		newMovementCmd(opts, "credit", "Credit an account"),
		newMovementCmd(opts, "debit", "Debit an account"),
		newTransferCmd(opts),
	)

	return rootCmd
}

func newAccountCmd(opts *options) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var (
		name, accountType, currency string
		deposit                     string
	)
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(deposit)
			if err != nil {
				return fmt.Errorf("invalid initial deposit %q: %w", deposit, err)
			}
			body := map[string]any{
				"name":            name,
				"account_type":    accountType,
				"currency":        currency,
				"initial_deposit": amount,
			}
			return send(cmd, opts, http.MethodPost, "/api/v1/accounts", body)
		},
	}
	openCmd.Flags().StringVar(&name, "name", "", "Account holder name")
	openCmd.Flags().StringVar(&accountType, "type", "SAVINGS", "Account type (SAVINGS, CHECKING, BUSINESS, FIXED_DEPOSIT)")
	openCmd.Flags().StringVar(&currency, "currency", "KES", "ISO 4217 currency code")
	openCmd.Flags().StringVar(&deposit, "deposit", "0", "Initial deposit")
	_ = openCmd.MarkFlagRequired("name")

	getCmd := &cobra.Command{
		Use:   "get <account-number>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd, opts, http.MethodGet, "/api/v1/accounts/"+args[0], nil)
		},
	}

	accountCmd.AddCommand(openCmd, getCmd)

	for _, action := range []string{"activate", "freeze", "unfreeze", "close"} {
		action := action
		accountCmd.AddCommand(&cobra.Command{
			Use:   action + " <account-number>",
			Short: "Set account status: " + action,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return send(cmd, opts, http.MethodPost, "/api/v1/accounts/"+args[0]+"/"+action, nil)
			},
		})
	}

	return accountCmd
}

func newMovementCmd(opts *options, kind, short string) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   kind + " <account-number> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			body := map[string]any{"amount": amount, "description": description}
			return send(cmd, opts, http.MethodPost, "/api/v1/accounts/"+args[0]+"/"+kind, body)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Movement description")

	return cmd
}

func newTransferCmd(opts *options) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "transfer <from-account> <to-account> <amount>",
		Short: "Transfer money between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			body := map[string]any{
				"from_account_number": args[0],
				"to_account_number":   args[1],
				"amount":              amount,
				"description":         description,
			}
			return send(cmd, opts, http.MethodPost, "/api/v1/transfers", body)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Transfer description")

	return cmd
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount must be positive, got %s", s)
	}
	return amount, nil
}

func send(cmd *cobra.Command, opts *options, method, path string, body any) error {
	key := ""
	if method != http.MethodGet {
		key = opts.idempotencyKey
		if key == "" {
			key = uuid.NewString()
		}
	}

	client := newAPIClient(opts.baseURL, opts.timeout)
	resp, err := client.do(cmd.Context(), method, path, body, key)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), resp)
}

// printJSON re-indents a JSON response body.
func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = w.Write(raw)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
