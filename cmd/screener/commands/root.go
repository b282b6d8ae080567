package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Trend screener - liquidity, quality and trend gates with composite ranking",
	Long: `Trend screener CLI

Screens a universe of equity tickers from CSV price history, rejects
unsuitable candidates with hard filters and ranks the survivors by a
weighted composite of liquidity, trend and signal scores.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen --data ./data
  go run ./cmd/screener screen --tickers AAPL,MSFT --top 5 --json
  go run ./cmd/screener schedule
  go run ./cmd/screener serve
  go run ./cmd/screener config validate strategy.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default is STRATEGY_FILE or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
