package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the bank",
		Long:  "Log in with username and password. The issued session persists locally and survives restarts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			if username == "" {
				fmt.Print("Username: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read username: %w", err)
				}
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Print("Password: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			if err := sess.Login(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("login: %w", err)
			}

			user := sess.CurrentUser()
			fmt.Printf("Logged in as %s (%s)\n", user.FullName(), user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted if omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess.Logout(cmd.Context())
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}

			// Revalidate against the server so a revoked token is caught here
			// rather than on the next real operation.
			user := sess.Validate(cmd.Context())
			if user == nil {
				return fmt.Errorf("session is no longer valid; run \"bankctl login\" again")
			}

			fmt.Printf("%s (%s)\n", user.FullName(), user.Username)
			fmt.Printf("  role:  %s\n", user.Role)
			fmt.Printf("  email: %s\n", user.Email)
			return nil
		},
	}
}
