// Command satoshictl scores, compares and exports ratings from the command line
// and load-tests a running server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "satoshictl",
		Short: "Could I Be Satoshi? from the command line",
		Long: `Score yourself against Bitcoin's early contributors.

Ratings are given as category=value pairs on the 0-10 scale, for example
  satoshictl score cryptography=8 coding=9.5
or as a score code taken from a share link with --code.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newScoreCmd(),
		newGapsCmd(),
		newShareCmd(),
		newRadarCmd(),
		newExportCmd(),
		newLoadCmd(),
	)
	return root
}
