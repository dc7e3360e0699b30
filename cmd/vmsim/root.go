package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim simulates a two-level paged virtual memory system.",
	Long: `vmsim simulates a two-level paged virtual memory system. It ` +
		`translates batches of virtual addresses against a segment table ` +
		`and per-segment page tables, restoring archived tables and pages ` +
		`from a simulated disk and evicting frames with an LFU policy.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file may carry defaults such as VMSIM_MONITOR_PORT.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
