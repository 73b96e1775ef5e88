package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "Futures trading assistant",
	Long: `assist sizes simulated futures orders from risk budgets, tracks open
positions against live exchange prices and fires stop-loss and
take-profit exits.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(genhashCmd)
}
