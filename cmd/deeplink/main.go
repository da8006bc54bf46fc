// Package main is the entry point for the deeplink CLI.
package main

import (
	"os"

	"github.com/mrz1836/deeplink/internal/cli"
)

// Set through -ldflags at release time.
//
//nolint:gochecknoglobals // ldflags targets
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
