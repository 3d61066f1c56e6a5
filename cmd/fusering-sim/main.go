// fusering-sim replays scripted moves against a fusion board and prints
// every event the engine emits.
//
// Usage:
//
//	fusering-sim play --board <board.yaml> --moves <moves.yaml> [--catalog <csv>]
//	fusering-sim show --board <board.yaml> [--catalog <csv>]
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "fusering-sim",
	Short:         "Scripted simulation for the fusering board engine",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(showCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
