// Package main is the entry point for the rbak CLI.
package main

import (
	"os"

	"github.com/thoreinstein/rbak/cmd/rbak/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.PrintError(os.Stderr, err))
	}
}
