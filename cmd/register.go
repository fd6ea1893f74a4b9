// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"insightst/cli/internal/auth"
	"insightst/cli/internal/guard"
	"insightst/cli/internal/terminal"
)

var (
	registerName  string
	registerEmail string
)

var registerCmd = &cobra.Command{
	Use:     "register",
	Aliases: []string{"signup"},
	Short:   "Create an account and sign in",
	Long: `The register command creates an account on the insights service and then
signs you in with the same credentials. The password is asked twice and must
be at least the configured minimum length.`,
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
			return nil
		}

		p := terminal.NewPrompter()
		r := auth.Registration{Name: registerName, Email: registerEmail}
		if r.Name == "" {
			if r.Name, err = p.Line("Name", ""); err != nil {
				return err
			}
		}
		if r.Email == "" {
			if r.Email, err = p.Line("Email", ""); err != nil {
				return err
			}
		}
		if r.Secret, err = p.Secret("Password"); err != nil {
			return err
		}
		if r.Confirm, err = p.Secret("Confirm password"); err != nil {
			return err
		}

		stop := startPendingSpinner(a.out, "Creating your account")
		err = a.session.Register(ctx, r)
		stop()
		if err != nil {
			return a.fail("Registration failed", err)
		}
		fmt.Fprintf(a.out, "🎉 Account created. Welcome, %s!\n", a.session.Snapshot().Identity.Account())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name (prompted when empty)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (prompted when empty)")
}
