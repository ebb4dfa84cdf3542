// Package main is the warehouse CLI entry point.
package main

import (
	"fmt"
	"os"

	"ecom-warehouse/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
