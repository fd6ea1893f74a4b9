// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"insightst/cli/internal/guard"
	"insightst/cli/internal/terminal"
)

var loginEmail string

// loginCmd signs in with email and password. It is a public-only surface:
// a user who is already signed in is pointed at whoami instead.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"signin"},
	Short:   "Sign in with your email and password",
	Long: `The login command exchanges your email and password for an access token,
stores the token in the OS keychain and loads your account.

If you are already signed in, nothing is changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if d := a.admit(ctx, guard.PublicOnly); !d.Allow {
			fmt.Fprintf(a.out, "Already logged in as %s\n", a.session.Snapshot().Identity.Account())
			fmt.Fprintf(a.out, "Run 'insightst logout' first to switch accounts.\n")
			return nil
		}

		p := terminal.NewPrompter()
		email := loginEmail
		if email == "" {
			if email, err = p.Line("Email", ""); err != nil {
				return err
			}
		}
		secret, err := p.Secret("Password")
		if err != nil {
			return err
		}

		stop := startPendingSpinner(a.out, "Signing in")
		err = a.session.Login(ctx, email, secret)
		stop()
		if err != nil {
			return a.fail("Login failed", err)
		}
		fmt.Fprintln(a.out, loginGreeting(a.session.Snapshot().Identity.Account()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when empty)")
}
