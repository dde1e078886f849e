package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/gobank/pkg/model"
)

// money formats an amount with thousands separators and two decimals.
func money(amount float64) string {
	return humanize.CommafWithDigits(amount, 2)
}

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with the combined EUR balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			if err := accountSvc.FetchAll(cmd.Context()); err != nil {
				return fmt.Errorf("fetch accounts: %w", err)
			}

			list := accountSvc.Accounts()
			if len(list) == 0 {
				fmt.Println("No accounts.")
				return nil
			}

			fmt.Printf("%-22s  %-4s  %14s  %s\n", "ACCOUNT", "CUR", "BALANCE", "STATUS")
			for _, a := range list {
				status := "active"
				if !a.Active {
					status = "disabled"
				}
				fmt.Printf("%-22s  %-4s  %14s  %s\n", a.AccountNumber, a.Currency, money(a.Balance), status)
			}
			fmt.Printf("\nTotal: %s EUR\n", money(accountSvc.TotalEUR()))
			return nil
		},
	}

	cmd.AddCommand(newAccountShowCmd())
	return cmd
}

func newAccountShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ACCOUNT",
		Short: "Show one account's balance and limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}

			account, err := client.AccountDetails(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("account details: %w", err)
			}
			printAccount(account)
			return nil
		},
	}
}

func printAccount(a *model.Account) {
	fmt.Printf("%s (%s)\n", a.AccountNumber, a.Currency)
	fmt.Printf("  balance:              %s\n", money(a.Balance))
	fmt.Printf("  transfer limit:       %s per transfer, %s per day (%s used today)\n",
		money(a.TransferLimit), money(a.DailyTransferLimit), money(a.TransferUsedToday))
	fmt.Printf("  withdrawal limit:     %s per withdrawal, %s per day (%s used today)\n",
		money(a.WithdrawalLimit), money(a.DailyWithdrawalLimit), money(a.WithdrawalUsedToday))
	fmt.Printf("  remaining today:      %s transfer, %s withdrawal\n",
		money(a.RemainingDailyTransfer()), money(a.RemainingDailyWithdrawal()))
}
