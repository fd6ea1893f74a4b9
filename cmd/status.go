// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"insightst/cli/internal/guard"
	"insightst/cli/internal/logging"
)

var statusOffline bool

// statusCmd reports what the route guard decides for this device, without
// redirecting anywhere. With --offline the stored token is not checked and
// the session stays pending.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		outcome := guard.Evaluate(a.session.Snapshot())
		if !statusOffline {
			outcome = a.admit(ctx, guard.PublicOnly).Outcome
		}
		s := a.session.Snapshot()

		fmt.Fprintf(a.out, "Service:  %s\n", a.pl.BaseURL())
		fmt.Fprintf(a.out, "Session:  %s\n", outcome)
		if s.Token != "" {
			fmt.Fprintf(a.out, "Token:    %s\n", logging.MaskToken(s.Token))
		}
		switch {
		case s.Authenticated():
			fmt.Fprintf(a.out, "Account:  %s\n", s.Identity.Account())
		case s.Token != "":
			if h, ok := a.store.Hint(); ok {
				fmt.Fprintf(a.out, "Account:  %s (last verified %s)\n", h.Account, h.SeenAt.Local().Format("2006-01-02 15:04"))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusOffline, "offline", false, "Do not contact the service")
}
