// Package main is the entry point for the rulehub CLI.
package main

import (
	"os"

	"github.com/custodia-labs/rulehub/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
