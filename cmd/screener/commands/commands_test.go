package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := out
	out = buf
	t.Cleanup(func() { out = prev })
	return buf
}

func TestSplitTickers(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"aapl", []string{"AAPL"}},
		{" aapl, msft ,,nvda ", []string{"AAPL", "MSFT", "NVDA"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, splitTickers(tt.raw))
		})
	}
}

func TestTimeframes(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.WeeklyTrend.Enabled = true
	assert.Equal(t, []contracts.Timeframe{contracts.Weekly}, timeframes(cfg))

	cfg.WeeklyTrend.Enabled = false
	assert.Empty(t, timeframes(cfg))
}

func TestScore(t *testing.T) {
	assert.Equal(t, "72.35", score(72.345))
	assert.Equal(t, "0.00", score(0))
	assert.Equal(t, "100.00", score(100))
}

func TestPrintResult(t *testing.T) {
	buf := captureOutput(t)
	start := time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC)

	printResult(&contracts.ScreeningResult{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Universe:   3,
		Ranked: []contracts.ScoreRecord{
			{Ticker: "AAPL", Rank: 1, CompositeScore: 81.234, Confidence: contracts.ConfidenceHigh, Signals: []string{"rsi_momentum"}},
		},
		FilterStats: map[string]*contracts.FilterStats{
			"liquidity": {Evaluated: 3, Passed: 1, Rejected: 2},
		},
		Partial: true,
		Skipped: []string{"MSFT"},
	}, "reports/screening_20240301_163001.json")

	s := buf.String()
	assert.Contains(t, s, "AAPL")
	assert.Contains(t, s, "81.23")
	assert.Contains(t, s, "rsi_momentum")
	assert.Contains(t, s, "3 evaluated, 1 passed, 2 rejected")
	assert.Contains(t, s, "1.5s")
	assert.Contains(t, s, "Partial result: 1 tickers not evaluated")
	assert.Contains(t, s, "screening_20240301_163001.json")
}

func TestPrintResult_Empty(t *testing.T) {
	buf := captureOutput(t)
	printResult(&contracts.ScreeningResult{RunID: "run-2"}, "")

	assert.Contains(t, buf.String(), "No tickers passed the filters")
	assert.NotContains(t, buf.String(), "Report written")
}

func TestPrintTable(t *testing.T) {
	buf := captureOutput(t)
	PrintTableHeader([]string{"A", "B"}, []int{3, 2})
	PrintTableRow([]string{"x", "y"}, []int{3, 2})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A    B ", lines[0])
	assert.Equal(t, strings.Repeat("─", 7), lines[1])
	assert.Equal(t, "x    y ", lines[2])
}

func TestConfigCommands(t *testing.T) {
	data, err := strategyconfig.Marshal(strategyconfig.Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Run("validate", func(t *testing.T) {
		buf := captureOutput(t)
		require.NoError(t, runConfigValidate(configValidateCmd, []string{path}))
		assert.Contains(t, buf.String(), "Strategy is valid: "+path)
	})

	t.Run("show", func(t *testing.T) {
		buf := captureOutput(t)
		require.NoError(t, runConfigShow(configShowCmd, []string{path}))

		hash, err := strategyconfig.Hash(strategyconfig.Normalize(strategyconfig.Default()))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(buf.String(), "# hash: "+hash))
	})

	t.Run("invalid", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("scoring:\n  top_n: -1\n"), 0o644))

		buf := captureOutput(t)
		assert.Error(t, runConfigValidate(configValidateCmd, []string{bad}))
		assert.Contains(t, buf.String(), "❌")
	})
}
