package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/gobank/pkg/model"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back-office operations (employee role required)",
	}
	cmd.AddCommand(
		newAdminUsersCmd(),
		newAdminEnableUserCmd(),
		newAdminLimitsCmd(),
		newAdminCreateAccountCmd(),
		newAdminDisableAccountCmd(),
	)
	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	var (
		flagDisabled    bool
		flagPage, flagN int
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}

			var (
				page *model.UserPage
				err  error
			)
			if flagDisabled {
				page, err = client.DisabledUsers(cmd.Context(), flagPage, flagN)
			} else {
				page, err = client.Users(cmd.Context(), flagPage, flagN)
			}
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			if len(page.Users) == 0 {
				fmt.Println("No users.")
				return nil
			}
			fmt.Printf("%-10s  %-14s  %-24s  %-10s  %s\n", "ID", "USERNAME", "NAME", "ROLE", "STATUS")
			for _, u := range page.Users {
				status := "active"
				if !u.Active {
					status = "disabled"
				}
				fmt.Printf("%-10s  %-14s  %-24s  %-10s  %s\n", u.ID, u.Username, u.FullName(), u.Role, status)
			}
			fmt.Printf("\n(page %d, %d total)\n", page.Page, page.Total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagDisabled, "disabled", false, "Only users awaiting activation")
	cmd.Flags().IntVar(&flagPage, "page", 1, "Page number")
	cmd.Flags().IntVar(&flagN, "limit", 20, "Page size")
	return cmd
}

func newAdminEnableUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable-user ID",
		Short: "Activate a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			if err := client.EnableUser(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("enable user: %w", err)
			}
			fmt.Printf("User %s activated.\n", args[0])
			return nil
		},
	}
}

func newAdminLimitsCmd() *cobra.Command {
	var update model.LimitsUpdate

	cmd := &cobra.Command{
		Use:   "limits ACCOUNT",
		Short: "Update an account's transfer and withdrawal caps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			update.AccountNumber = args[0]
			if err := client.UpdateLimits(cmd.Context(), update); err != nil {
				return fmt.Errorf("update limits: %w", err)
			}
			fmt.Printf("Limits updated for %s.\n", update.AccountNumber)
			return nil
		},
	}

	cmd.Flags().Float64Var(&update.TransferLimit, "transfer", 0, "Per-transfer cap (0 = uncapped)")
	cmd.Flags().Float64Var(&update.DailyTransferLimit, "daily-transfer", 0, "Daily transfer cap")
	cmd.Flags().Float64Var(&update.WithdrawalLimit, "withdrawal", 0, "Per-withdrawal cap")
	cmd.Flags().Float64Var(&update.DailyWithdrawalLimit, "daily-withdrawal", 0, "Daily withdrawal cap")
	return cmd
}

func newAdminCreateAccountCmd() *cobra.Command {
	var req model.CreateAccountRequest

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Open a new account for a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			account, err := client.CreateAccount(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}
			fmt.Printf("Created %s (%s) for %s.\n", account.AccountNumber, account.Currency, account.OwnerID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.OwnerID, "owner", "", "Owning user ID")
	cmd.Flags().StringVar(&req.Currency, "currency", "EUR", "Account currency")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func newAdminDisableAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable-account ACCOUNT",
		Short: "Deactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			if err := client.DisableAccount(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("disable account: %w", err)
			}
			fmt.Printf("Account %s disabled.\n", args[0])
			return nil
		},
	}
}
