// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the insightst CLI.
// Commands are the client's surfaces: some need a signed-in user, some are
// only for signed-out users, and all of them read the one session owned by
// the app built in app.go.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	baseURL string
)

// errReported marks an error the command already printed.
var errReported = errors.New("reported")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "insightst",
	Short: "Command-line client for the insightst text insights service",
	Long: `insightst signs you in to the text insights service and keeps your session
in the OS keychain, so every later command is authenticated automatically.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Override the service base URL")
}
