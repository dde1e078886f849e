package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/gobank/pkg/model"
)

func newTransactionsCmd() *cobra.Command {
	var (
		flagAccount      string
		flagType         string
		flagFrom         string
		flagTo           string
		flagMin, flagMax float64
		flagCounterparty string
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}

			filter := model.TransactionFilter{
				Type:         model.TransactionType(flagType),
				MinAmount:    flagMin,
				MaxAmount:    flagMax,
				Counterparty: flagCounterparty,
			}
			var err error
			if filter.FromDate, err = parseDate(flagFrom); err != nil {
				return err
			}
			if filter.ToDate, err = parseDate(flagTo); err != nil {
				return err
			}

			ctx := cmd.Context()
			var txs []model.Transaction
			switch {
			case flagAccount != "" && !filter.IsZero():
				txs, err = client.AccountTransactionsFiltered(ctx, flagAccount, filter)
			case flagAccount != "":
				txs, err = client.AccountTransactions(ctx, flagAccount)
			case !filter.IsZero():
				txs, err = client.FilterTransactions(ctx, filter)
			default:
				txs, err = client.AllTransactions(ctx)
			}
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}

			if len(txs) == 0 {
				fmt.Println("No transactions.")
				return nil
			}
			printTransactions(txs)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagAccount, "account", "", "Limit to one account")
	cmd.Flags().StringVar(&flagType, "type", "", "Filter by type (deposit, withdrawal, transfer)")
	cmd.Flags().StringVar(&flagFrom, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagTo, "to", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&flagMin, "min", 0, "Minimum amount")
	cmd.Flags().Float64Var(&flagMax, "max", 0, "Maximum amount")
	cmd.Flags().StringVar(&flagCounterparty, "counterparty", "", "Match either side of the transaction")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func printTransactions(txs []model.Transaction) {
	fmt.Printf("%-12s  %-22s  %-22s  %12s  %-4s  %s\n",
		"TYPE", "FROM", "TO", "AMOUNT", "CUR", "WHEN")
	for _, tx := range txs {
		fmt.Printf("%-12s  %-22s  %-22s  %12s  %-4s  %s\n",
			tx.Type, orDash(tx.FromAccount), orDash(tx.ToAccount),
			money(tx.Amount), tx.Currency, humanize.Time(tx.Timestamp))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
