package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app **App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the backend and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			token, profile, err := a.Accounts.Authenticate(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := a.Session.Login(token, profile); err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", profile.Name, profile.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*app).Session.Logout(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}
