package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/gobank/internal/atm"
)

func newATMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atm",
		Short: "ATM deposits and withdrawals",
	}
	cmd.AddCommand(newATMOpCmd(atm.Deposit), newATMOpCmd(atm.Withdraw))
	return cmd
}

func newATMOpCmd(kind atm.Kind) *cobra.Command {
	var (
		flagAccount string
		flagAmount  float64
	)

	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: fmt.Sprintf("%s cash at the ATM", kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := accountSvc.FetchAll(ctx); err != nil {
				return fmt.Errorf("fetch accounts: %w", err)
			}
			account := accountSvc.Find(flagAccount)
			if account == nil {
				return fmt.Errorf("account %s is not one of your accounts", flagAccount)
			}

			wf := atm.New(client, rateCache, accountSvc, logger)
			wf.SelectAccount(ctx, account)
			wf.SetKind(kind)
			wf.SetAmount(flagAmount)

			if err := wf.AmountError(); err != nil {
				snap := wf.Snapshot()
				return fmt.Errorf("%w (single %s %s, daily %s %s)", err,
					money(singleCap(kind, snap.SingleWithdrawal, snap.SingleDeposit)), snap.Currency,
					money(singleCap(kind, snap.DailyWithdrawal, snap.DailyDeposit)), snap.Currency)
			}

			result, err := wf.Submit(ctx)
			if err != nil {
				if msg := wf.ErrorMessage(); msg != "" {
					return fmt.Errorf("%s", msg)
				}
				return fmt.Errorf("%s: %w", kind, err)
			}

			fmt.Printf("%s of %s %s complete. New balance: %s %s\n",
				titleKind(kind), money(flagAmount), account.Currency,
				money(result.NewBalance), account.Currency)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagAccount, "account", "", "Account number")
	cmd.Flags().Float64Var(&flagAmount, "amount", 0, "Amount in the account's currency")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func singleCap(kind atm.Kind, withdrawal, deposit float64) float64 {
	if kind == atm.Withdraw {
		return withdrawal
	}
	return deposit
}

func titleKind(kind atm.Kind) string {
	if kind == atm.Withdraw {
		return "Withdrawal"
	}
	return "Deposit"
}
