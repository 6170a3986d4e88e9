package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Cross-chain operation simulator",
	Long: `Simulates cross-chain messages and token transfers between Solana, Ethereum,
Arbitrum and Polygon with realistic confirmation delays, keeping a balance
ledger and reversing debits of failed transfers.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "path to the yaml config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(demoCmd)
}
