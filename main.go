// Package main is the entry point for the insightst CLI.
package main

import (
	"insightst/cli/cmd"
)

// main initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
