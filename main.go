// Package main is the entry point for prfill.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/prfill/cmd"
	"github.com/danielolaszy/prfill/internal/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logging.Info("starting prfill", "version", version)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
