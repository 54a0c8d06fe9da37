// Package main is the entry point for the syncstat CLI tool.
package main

import (
	"os"

	"github.com/good-yellow-bee/syncstat/cmd/syncstat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
