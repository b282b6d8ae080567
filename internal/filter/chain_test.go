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

func TestNewChain_Order(t *testing.T) {
	cfg := strategyconfig.Default()
	assert.Equal(t, []string{NameDataQuality, NameLiquidity, NameTrend, NameWeeklyTrend}, NewChain(cfg).Names())

	cfg.WeeklyTrend.Enabled = false
	assert.Equal(t, []string{NameDataQuality, NameLiquidity, NameTrend}, NewChain(cfg).Names())
}

func TestChain_PassingTickerRunsEveryFilter(t *testing.T) {
	out := NewChain(strategyconfig.Default()).Evaluate(dailyOnly("AAA", uptrend(150)))

	assert.True(t, out.Passed)
	assert.Len(t, out.Results, 4)
	require.NotNil(t, out.Trend)
	assert.Equal(t, contracts.TrendUnknown, out.Trend.WeeklyTrend)

	_, rejected := out.Rejection()
	assert.False(t, rejected)
}

func TestChain_ShortCircuits(t *testing.T) {
	s := uptrend(150)
	s[80].Date = s[79].Date

	out := NewChain(strategyconfig.Default()).Evaluate(dailyOnly("DUP", s))

	assert.False(t, out.Passed)
	require.Len(t, out.Results, 1)
	assert.Nil(t, out.Trend)

	r, ok := out.Rejection()
	require.True(t, ok)
	assert.Equal(t, NameDataQuality, r.Filter)
	assert.Equal(t, ReasonDuplicateDates, r.Reason)
}

func TestChain_TrendConflict(t *testing.T) {
	a := augment("CNF", contracts.TickerData{
		contracts.Daily:  uptrend(150),
		contracts.Weekly: weeklyDown(),
	})

	out := NewChain(strategyconfig.Default()).Evaluate(a)

	assert.False(t, out.Passed)
	r, _ := out.Rejection()
	assert.Equal(t, NameWeeklyTrend, r.Filter)
	assert.Equal(t, contracts.ReasonTrendConflict, r.Reason)
	require.NotNil(t, out.Trend)
	assert.True(t, out.Trend.Conflicting())
}

func TestChain_Apply(t *testing.T) {
	batch := []*indicator.Augmented{
		dailyOnly("AAA", uptrend(150)),
		dailyOnly("FLAT", testutil.Flat(150, 50, 1e6)),
		dailyOnly("THIN", testutil.Daily(testutil.Geometric(150, 100, 0.01), 10)),
	}

	passed, rejected := NewChain(strategyconfig.Default()).Apply(batch)

	require.Len(t, passed, 1)
	assert.Equal(t, "AAA", passed[0].Ticker)
	require.Len(t, rejected, 2)
	assert.Equal(t, ReasonWeakTrend, rejected[0].Reason)
	assert.Equal(t, ReasonBelowFloor, rejected[1].Reason)
}
