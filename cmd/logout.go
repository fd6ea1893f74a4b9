// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd clears the session. The service is told first when a token is
// stored (best effort); local state is removed regardless.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored token",
	Long: `The logout command revokes your access token on the service when it can
and always removes it from the OS keychain together with the last-account hint.

Running it while signed out is harmless.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.session.Logout(ctx); err != nil {
			return a.fail("Logout failed", err)
		}
		fmt.Fprintln(a.out, "✅ Logged out. Your token has been removed from this device.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
