package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
	"github.com/wonny/trendscreen/internal/testutil"
)

func weeklyUp() contracts.Series {
	return testutil.WeeklySeries(testutil.Geometric(30, 100, 0.02), 5e6)
}

func weeklyDown() contracts.Series {
	return testutil.WeeklySeries(testutil.Geometric(30, 200, -0.02), 5e6)
}

func downtrend(n int) contracts.Series {
	return testutil.Daily(testutil.Geometric(n, 400, -0.01), 1e6)
}

func TestWeeklyTrend_DecisionTable(t *testing.T) {
	tests := []struct {
		name       string
		daily      contracts.Series
		weekly     contracts.Series
		passed     bool
		wantDaily  contracts.TrendLabel
		wantWeekly contracts.TrendLabel
	}{
		{"up/up", uptrend(150), weeklyUp(), true, contracts.TrendUp, contracts.TrendUp},
		{"down/down", downtrend(150), weeklyDown(), true, contracts.TrendDown, contracts.TrendDown},
		{"up/down conflict", uptrend(150), weeklyDown(), false, contracts.TrendUp, contracts.TrendDown},
		{"down/up conflict", downtrend(150), weeklyUp(), false, contracts.TrendDown, contracts.TrendUp},
		{"up/sideways", uptrend(150), testutil.WeeklySeries(testutil.Constant(30, 100), 5e6), true, contracts.TrendUp, contracts.TrendSideways},
		{"up/short weekly", uptrend(150), testutil.WeeklySeries(testutil.Geometric(10, 200, -0.02), 5e6), true, contracts.TrendUp, contracts.TrendUnknown},
		{"up/no weekly", uptrend(150), nil, true, contracts.TrendUp, contracts.TrendUnknown},
	}

	f := NewWeeklyTrendFilter(strategyconfig.Default().WeeklyTrend)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := contracts.TickerData{contracts.Daily: tt.daily}
			if tt.weekly != nil {
				data[contracts.Weekly] = tt.weekly
			}

			res, state := f.EvaluateState(augment("T", data))

			assert.Equal(t, tt.passed, res.Passed)
			assert.Equal(t, tt.wantDaily, state.DailyTrend)
			assert.Equal(t, tt.wantWeekly, state.WeeklyTrend)
			if !tt.passed {
				assert.Equal(t, contracts.ReasonTrendConflict, res.Reason)
				assert.NotEmpty(t, state.RejectionReason)
				assert.False(t, state.Aligned)
			}
		})
	}
}

func TestWeeklyTrend_NoWeeklySeriesDegrades(t *testing.T) {
	state := NewWeeklyTrendFilter(strategyconfig.Default().WeeklyTrend).Analyze(dailyOnly("T", uptrend(150)))

	assert.True(t, state.Aligned)
	assert.Nil(t, state.WeeklyMA)
	assert.Nil(t, state.WeeklySlope)
	require.NotNil(t, state.DailySlope)
	assert.Greater(t, *state.DailySlope, 0.005)
}

func TestWeeklyTrend_AlignmentNotRequired(t *testing.T) {
	cfg := strategyconfig.Default().WeeklyTrend
	cfg.RequireAlignment = false

	res, state := NewWeeklyTrendFilter(cfg).EvaluateState(augment("T", contracts.TickerData{
		contracts.Daily:  uptrend(150),
		contracts.Weekly: weeklyDown(),
	}))

	assert.True(t, res.Passed)
	assert.True(t, state.Conflicting())
	assert.False(t, state.Aligned)
	assert.Empty(t, state.RejectionReason)
	require.NotNil(t, state.WeeklySlope)
	assert.Less(t, *state.WeeklySlope, -0.005)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		slope indicator.Value
		want  contracts.TrendLabel
	}{
		{indicator.Of(0.01), contracts.TrendUp},
		{indicator.Of(-0.01), contracts.TrendDown},
		{indicator.Of(0.005), contracts.TrendSideways},
		{indicator.Of(-0.005), contracts.TrendSideways},
		{indicator.Of(0), contracts.TrendSideways},
		{indicator.Unavailable(), contracts.TrendUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.slope, 0.005), "slope %s", tt.slope)
	}
}

func TestSummarize(t *testing.T) {
	states := []contracts.TrendState{
		{DailyTrend: contracts.TrendUp, WeeklyTrend: contracts.TrendUp},
		{DailyTrend: contracts.TrendDown, WeeklyTrend: contracts.TrendDown},
		{DailyTrend: contracts.TrendUp, WeeklyTrend: contracts.TrendDown},
		{DailyTrend: contracts.TrendUp, WeeklyTrend: contracts.TrendSideways},
		{DailyTrend: contracts.TrendUp, WeeklyTrend: contracts.TrendUnknown},
		{DailyTrend: contracts.TrendUnknown, WeeklyTrend: contracts.TrendUnknown},
	}

	stats := Summarize(states)
	assert.Equal(t, contracts.TrendStats{Aligned: 2, Conflicting: 1, Sideways: 1, Unknown: 2}, stats)
	assert.Equal(t, len(states), stats.Total())
}
