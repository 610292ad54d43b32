// Package main provides the entry point for the kbsearch CLI.
package main

import (
	"os"

	"github.com/secwise/kbsearch/cmd/kbsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
