package screener

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/filter"
	"github.com/wonny/trendscreen/internal/strategyconfig"
	"github.com/wonny/trendscreen/internal/testutil"
	"github.com/wonny/trendscreen/internal/trendscore"
	"github.com/wonny/trendscreen/pkg/logger"
)

func daily(s contracts.Series) contracts.TickerData {
	return contracts.TickerData{contracts.Daily: s}
}

func trending(rate, volume float64) contracts.Series {
	return testutil.Daily(testutil.Geometric(150, 100, rate), volume)
}

// universe has 9 tickers: 3 clean trends, 3 illiquid, 1 with duplicate
// dates and 2 without a trend.
func universe() contracts.MarketData {
	dup := trending(0.01, 1e6)
	dup[70].Date = dup[69].Date

	return contracts.MarketData{
		"AAPL": daily(trending(0.010, 2e6)),
		"MSFT": daily(trending(0.012, 1e6)),
		"NVDA": daily(trending(0.008, 5e5)),
		"THN1": daily(trending(0.010, 100)),
		"THN2": daily(trending(0.010, 50)),
		"THN3": daily(trending(0.010, 10)),
		"DUPE": daily(dup),
		"FLT1": daily(testutil.Flat(150, 40, 1e6)),
		"FLT2": daily(testutil.Flat(150, 80, 1e6)),
	}
}

func newScreener(t *testing.T, cfg *strategyconfig.Config) *Screener {
	t.Helper()
	s, err := New(cfg, logger.Nop())
	require.NoError(t, err)
	return s
}

func TestNew_InvalidConfigFailsFast(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Scoring.Weights.Trend = -1

	_, err := New(cfg, logger.Nop())
	require.Error(t, err)

	var verr strategyconfig.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "scoring.weights.trend", verr.Field)
}

func TestNew_UnknownScorer(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.TrendScorer.Name = "oracle"

	_, err := New(cfg, logger.Nop())
	assert.True(t, errors.Is(err, trendscore.ErrUnknownScorer))
}

func TestRun_Scenario(t *testing.T) {
	s := newScreener(t, strategyconfig.Default())
	res := s.Run(context.Background(), universe())

	assert.Equal(t, 9, res.Universe)
	assert.False(t, res.Partial)
	require.Len(t, res.Ranked, 3)

	got := []string{res.Ranked[0].Ticker, res.Ranked[1].Ticker, res.Ranked[2].Ticker}
	sort.Strings(got)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, got)

	reasons := make(map[string]string)
	for ticker, results := range res.Rejected {
		last := results[len(results)-1]
		reasons[ticker] = last.Reason
	}
	assert.Equal(t, map[string]string{
		"THN1": filter.ReasonBelowFloor,
		"THN2": filter.ReasonBelowFloor,
		"THN3": filter.ReasonBelowFloor,
		"DUPE": filter.ReasonDuplicateDates,
		"FLT1": filter.ReasonWeakTrend,
		"FLT2": filter.ReasonWeakTrend,
	}, reasons)

	assert.Equal(t, 9, res.FilterStats[filter.NameDataQuality].Evaluated)
	assert.Equal(t, 1, res.FilterStats[filter.NameDataQuality].Rejected)
	assert.Equal(t, 3, res.FilterStats[filter.NameLiquidity].Rejected)
	assert.Equal(t, 2, res.FilterStats[filter.NameTrend].Reasons[filter.ReasonWeakTrend])
	assert.Equal(t, 3, res.FilterStats[filter.NameWeeklyTrend].Passed)
	assert.Equal(t, contracts.TrendStats{Unknown: 3}, res.TrendStats)
}

func TestRun_RankedInvariants(t *testing.T) {
	res := newScreener(t, strategyconfig.Default()).Run(context.Background(), universe())

	for i, r := range res.Ranked {
		assert.Equal(t, i+1, r.Rank)
		assert.GreaterOrEqual(t, r.CompositeScore, 0.0)
		assert.LessOrEqual(t, r.CompositeScore, 100.0)
		if i > 0 {
			prev := res.Ranked[i-1]
			assert.True(t, prev.CompositeScore > r.CompositeScore ||
				(prev.CompositeScore == r.CompositeScore && prev.Ticker < r.Ticker))
		}
	}
}

func TestRun_TopNTruncates(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Scoring.TopN = 2

	res := newScreener(t, cfg).Run(context.Background(), universe())
	assert.Len(t, res.Ranked, 2)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Workers = 1
	first := newScreener(t, cfg).Run(context.Background(), universe())

	cfg.Workers = 8
	second := newScreener(t, cfg).Run(context.Background(), universe())

	assert.Equal(t, first.Ranked, second.Ranked)
	assert.Equal(t, first.Rejected, second.Rejected)
	assert.Equal(t, first.ConfigHash, second.ConfigHash)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_EmptyResultIsNotAnError(t *testing.T) {
	data := contracts.MarketData{
		"THN1": daily(trending(0.01, 10)),
		"FLT1": daily(testutil.Flat(150, 40, 1e6)),
	}

	res := newScreener(t, strategyconfig.Default()).Run(context.Background(), data)

	assert.NotNil(t, res.Ranked)
	assert.True(t, res.Empty())
	assert.Len(t, res.Rejected, 2)
}

func TestRun_EmptyUniverse(t *testing.T) {
	res := newScreener(t, strategyconfig.Default()).Run(context.Background(), contracts.MarketData{})
	assert.True(t, res.Empty())
	assert.Zero(t, res.Universe)
}

func TestRun_TrendConflict(t *testing.T) {
	data := contracts.MarketData{
		"CNFL": {
			contracts.Daily:  trending(0.01, 1e6),
			contracts.Weekly: testutil.WeeklySeries(testutil.Geometric(30, 200, -0.02), 5e6),
		},
		"ALGN": {
			contracts.Daily:  trending(0.01, 1e6),
			contracts.Weekly: testutil.WeeklySeries(testutil.Geometric(30, 100, 0.02), 5e6),
		},
	}

	res := newScreener(t, strategyconfig.Default()).Run(context.Background(), data)

	require.Len(t, res.Ranked, 1)
	assert.Equal(t, "ALGN", res.Ranked[0].Ticker)
	require.Contains(t, res.Rejected, "CNFL")
	results := res.Rejected["CNFL"]
	assert.Equal(t, contracts.ReasonTrendConflict, results[len(results)-1].Reason)
	assert.Equal(t, contracts.TrendStats{Aligned: 1, Conflicting: 1}, res.TrendStats)
	assert.Equal(t, contracts.TrendDown, res.TrendStates["CNFL"].WeeklyTrend)
}

func TestRun_AlignmentDisabled(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.WeeklyTrend.Enabled = false

	data := contracts.MarketData{
		"CNFL": {
			contracts.Daily:  trending(0.01, 1e6),
			contracts.Weekly: testutil.WeeklySeries(testutil.Geometric(30, 200, -0.02), 5e6),
		},
	}

	res := newScreener(t, cfg).Run(context.Background(), data)
	assert.Len(t, res.Ranked, 1)
	assert.NotContains(t, res.FilterStats, filter.NameWeeklyTrend)
	assert.Zero(t, res.TrendStats.Total())
}

func TestRun_CancelledContextIsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newScreener(t, strategyconfig.Default()).Run(ctx, universe())

	assert.True(t, res.Partial)
	assert.Len(t, res.Skipped, 9)
	assert.Empty(t, res.Ranked)
}

func TestRun_StampsHash(t *testing.T) {
	s := newScreener(t, strategyconfig.Default())
	want, err := strategyconfig.Hash(strategyconfig.Normalize(strategyconfig.Default()))
	require.NoError(t, err)

	res := s.Run(context.Background(), universe())
	assert.Equal(t, want, res.ConfigHash)
	assert.Equal(t, want, s.ConfigHash())
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
}

func TestRun_LogsSummary(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(strategyconfig.Default(), logger.NewWithWriter(&buf, "info"))
	require.NoError(t, err)

	s.Run(context.Background(), universe())
	assert.Contains(t, buf.String(), "Screening run completed")
	assert.Contains(t, buf.String(), `"ranked":3`)
}

func TestEvaluate_Candidate(t *testing.T) {
	s := newScreener(t, strategyconfig.Default())

	ev := s.Evaluate("AAPL", daily(trending(0.01, 2e6)))
	require.NotNil(t, ev.Candidate)
	assert.True(t, ev.Outcome.Passed)
	assert.Equal(t, trendscore.MAADXName, ev.Candidate.Trend.Scorer)
	assert.Equal(t, 100.0, ev.Candidate.Trend.Total)
	assert.Greater(t, ev.Candidate.Liquidity, 60.0)

	ev = s.Evaluate("FLT", daily(testutil.Flat(150, 40, 1e6)))
	assert.Nil(t, ev.Candidate)
}
