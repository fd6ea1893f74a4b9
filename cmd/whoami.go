// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var whoamiDetails bool

// whoamiCmd is the protected home surface: it shows the signed-in account.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the signed-in account",
	Long: `The whoami command checks the stored token with the service and shows the
account it belongs to. A token the service no longer accepts is removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		s, ok := a.requireSession(ctx)
		if !ok {
			return nil
		}
		fmt.Fprintf(a.out, "👤 Current user: %s\n", s.Identity.Account())
		if !whoamiDetails {
			return nil
		}

		id := s.Identity
		data := pterm.TableData{{"Field", "Value"}, {"id", id.ID}, {"name", id.Name}, {"email", id.Email}}
		if id.Admin {
			data = append(data, []string{"admin", "yes"})
		}
		keys := make([]string, 0, len(id.Profile))
		for k := range id.Profile {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			data = append(data, []string{k, fmt.Sprint(id.Profile[k])})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(a.out).Render()
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&whoamiDetails, "details", false, "Show every profile field")
}
