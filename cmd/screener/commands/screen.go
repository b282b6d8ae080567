package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/trendscreen/internal/report"
	"github.com/wonny/trendscreen/internal/screener"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run one screening pass",
	Long: `Screens the ticker universe once and prints the ranked result.

This command:
- Loads daily (and weekly, when enabled) CSV series from the data dir
- Runs the data quality, liquidity and trend filters
- Ranks the survivors and writes a JSON report

Results are saved to PostgreSQL when DATABASE_URL is set.

Example:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --data ./data --top 10
  go run ./cmd/screener screen --tickers AAPL,MSFT,NVDA --json`,
	RunE: runScreen,
}

var (
	screenDataDir  string
	screenTickers  string
	screenTopN     int
	screenOutDir   string
	screenNoReport bool
	screenSave     bool
	screenJSON     bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenDataDir, "data", "", "CSV data directory (default DATA_DIR)")
	screenCmd.Flags().StringVar(&screenTickers, "tickers", "", "comma separated tickers (default full universe)")
	screenCmd.Flags().IntVar(&screenTopN, "top", 0, "override scoring.top_n")
	screenCmd.Flags().StringVar(&screenOutDir, "out", "", "report directory (default REPORT_DIR)")
	screenCmd.Flags().BoolVar(&screenNoReport, "no-report", false, "do not write a JSON report")
	screenCmd.Flags().BoolVar(&screenSave, "save", false, "fail unless the result can be saved to the database")
	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "print the report as JSON")
}

func runScreen(cmd *cobra.Command, args []string) error {
	if screenTopN < 0 {
		return fmt.Errorf("--top must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{
		DataDir:   screenDataDir,
		ReportDir: screenOutDir,
		TopN:      screenTopN,
		NoReport:  screenNoReport,
		RequireDB: screenSave,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	output, err := a.runner.Run(ctx, screener.RunOptions{
		Tickers: splitTickers(screenTickers),
		Timeout: a.cfg.Screen.Timeout,
	})
	if err != nil {
		return fmt.Errorf("screening failed: %w", err)
	}

	if screenJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Build(output.Result))
	}

	printResult(output.Result, output.ReportPath)
	if output.Saved {
		PrintSuccess(fmt.Sprintf("Saved run %s", output.Result.RunID))
	}
	return nil
}
