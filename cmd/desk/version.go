package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build info injected via ldflags
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("desk %s (commit: %s, built: %s, %s)\n",
			buildVersion, buildCommit, buildDate, runtime.Version())
	},
}
