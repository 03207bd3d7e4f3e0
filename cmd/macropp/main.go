// Package main provides the macropp command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/macropp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
