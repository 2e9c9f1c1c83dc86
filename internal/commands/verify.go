package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/eventmate-dev/eventmate/internal/config"
	"github.com/eventmate-dev/eventmate/internal/logger"
	"github.com/eventmate-dev/eventmate/internal/reconcile"
	"github.com/eventmate-dev/eventmate/internal/roster"
	"github.com/eventmate-dev/eventmate/internal/statement"
	"github.com/eventmate-dev/eventmate/internal/store"
)

func newVerifyCommand() *cobra.Command {
	var configPath string
	var amount string

	cmd := &cobra.Command{
		Use:   "verify <statement.pdf> <roster.csv>",
		Short: "Reconcile a statement against a roster without the server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(configPath, args[0], args[1], amount)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "expected payment amount per participant (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&configPath, "config", "eventmate.yaml", "path to eventmate.yaml")

	return cmd
}

func runVerify(configPath, statementPath, rosterPath, amount string) error {
	expected, err := decimal.NewFromString(amount)
	if err != nil || !expected.IsPositive() {
		return fmt.Errorf("invalid expected amount %q", amount)
	}

	log := logger.New()

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return err
	}

	pdfBytes, err := os.ReadFile(statementPath)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}
	text, err := statement.Text(pdfBytes)
	if err != nil {
		return err
	}
	txns := statement.Default().Extract(text)

	rosterFile, err := os.Open(rosterPath)
	if err != nil {
		return fmt.Errorf("opening roster: %w", err)
	}
	defer rosterFile.Close()

	entries, err := roster.Parse(rosterFile)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	participants := store.NewParticipants(db)
	reconciler := reconcile.NewService(participants, cfg.Reconcile.Tolerance(), log)

	result, err := reconciler.Reconcile(context.Background(), txns, entries, expected)
	if err != nil {
		return err
	}

	if result.TransactionCount == 0 {
		fmt.Println("No transactions found in statement.")
	}
	fmt.Printf("Verified %d of %d participants (%d pending).\n",
		result.VerifiedCount, result.TotalCount, result.Pending)
	return nil
}
