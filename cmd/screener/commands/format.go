package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/trendscreen/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// ═══════════════════════════════════════════════════════════

var out io.Writer = os.Stdout

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(out, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(out, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(out, "❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintf(out, "ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(out, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(out, "  ")
		}
	}
	fmt.Fprintln(out)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(out, "   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Fprintf(out, "   %-*s : %s\n", keyWidth, key, value)
}

// score renders a score with two decimals, rounding half away from zero.
func score(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

var rankWidths = []int{4, 8, 9, 9, 9, 9, 6, 24}

// PrintRanked prints the ranked table of a result.
func PrintRanked(records []contracts.ScoreRecord) {
	PrintTableHeader([]string{"RANK", "TICKER", "COMPOSITE", "LIQUIDITY", "TREND", "SIGNAL", "CONF", "SIGNALS"}, rankWidths)
	for _, r := range records {
		PrintTableRow([]string{
			fmt.Sprintf("%d", r.Rank),
			r.Ticker,
			score(r.CompositeScore),
			score(r.LiquidityScore),
			score(r.TrendScore),
			score(r.SignalScore),
			string(r.Confidence),
			strings.Join(r.Signals, ","),
		}, rankWidths)
	}
}

// PrintSummary prints run counts, filter statistics and trend alignment.
func PrintSummary(r *contracts.ScreeningResult) {
	PrintKeyValue("Run ID", r.RunID, 12)
	PrintKeyValue("Config", r.ConfigHash, 12)
	PrintKeyValue("Universe", fmt.Sprintf("%d", r.Universe), 12)
	PrintKeyValue("Ranked", fmt.Sprintf("%d", len(r.Ranked)), 12)
	PrintKeyValue("Rejected", fmt.Sprintf("%d", len(r.Rejected)), 12)
	PrintKeyValue("Duration", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(), 12)

	if len(r.FilterStats) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Filters:")
		names := make([]string, 0, len(r.FilterStats))
		for name := range r.FilterStats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			st := r.FilterStats[name]
			PrintKeyValue(name, fmt.Sprintf("%d evaluated, %d passed, %d rejected", st.Evaluated, st.Passed, st.Rejected), 16)
		}
	}

	ts := r.TrendStats
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Trend: %d aligned, %d conflicting, %d sideways, %d unknown\n",
		ts.Aligned, ts.Conflicting, ts.Sideways, ts.Unknown)
}

// printResult prints the full human readable view of one run.
func printResult(r *contracts.ScreeningResult, reportPath string) {
	fmt.Fprintln(out)
	PrintDoubleSeparator()
	fmt.Fprintln(out, "  Screening Result")
	PrintSeparator()
	PrintSummary(r)
	PrintSeparator()

	if r.Empty() {
		PrintWarning("No tickers passed the filters")
	} else {
		PrintRanked(r.Ranked)
	}

	if r.Partial {
		fmt.Fprintln(out)
		PrintWarning(fmt.Sprintf("Partial result: %d tickers not evaluated", len(r.Skipped)))
	}
	if reportPath != "" {
		fmt.Fprintln(out)
		PrintSuccess("Report written to " + reportPath)
	}
	PrintDoubleSeparator()
}
