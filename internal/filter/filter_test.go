package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
	"github.com/wonny/trendscreen/internal/testutil"
)

func augment(ticker string, data contracts.TickerData) *indicator.Augmented {
	return indicator.Augment(ticker, data, strategyconfig.Default().IndicatorConfig())
}

func dailyOnly(ticker string, s contracts.Series) *indicator.Augmented {
	return augment(ticker, contracts.TickerData{contracts.Daily: s})
}

func uptrend(n int) contracts.Series {
	return testutil.Daily(testutil.Geometric(n, 100, 0.01), 1e6)
}

// === Liquidity ===

func TestLiquidity_FloorBoundary(t *testing.T) {
	f := NewLiquidityFilter(strategyconfig.Liquidity{MinDollarVolume: 1_000_000, Window: 20, MinPrice: 5})

	tests := []struct {
		name   string
		close  float64
		passed bool
		reason string
	}{
		{"exactly at floor", 10, true, ""},
		{"one cent below", 9.9999999, false, ReasonBelowFloor},
		{"comfortably above", 25, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.Evaluate(dailyOnly("T", testutil.Daily(testutil.Constant(30, tt.close), 100_000)))
			assert.Equal(t, tt.passed, res.Passed)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, NameLiquidity, res.Filter)
		})
	}
}

func TestLiquidity_MissingVolumeIsInsufficientData(t *testing.T) {
	s := testutil.Daily(testutil.Constant(30, 50), 1e6)
	s[25].Volume = math.NaN()

	res := NewLiquidityFilter(strategyconfig.Default().Liquidity).Evaluate(dailyOnly("T", s))
	assert.False(t, res.Passed)
	assert.Equal(t, contracts.ReasonInsufficientData, res.Reason)
}

func TestLiquidity_ShortSeries(t *testing.T) {
	res := NewLiquidityFilter(strategyconfig.Default().Liquidity).
		Evaluate(dailyOnly("T", testutil.Daily(testutil.Constant(10, 50), 1e6)))
	assert.Equal(t, contracts.ReasonInsufficientData, res.Reason)
}

func TestLiquidity_PriceBelowMinimum(t *testing.T) {
	res := NewLiquidityFilter(strategyconfig.Default().Liquidity).
		Evaluate(dailyOnly("T", testutil.Daily(testutil.Constant(30, 4), 1e7)))
	assert.False(t, res.Passed)
	assert.Equal(t, ReasonPriceBelowMin, res.Reason)
	assert.Equal(t, 4.0, res.Measured["last_close"])
}

func TestAverageDollarVolume(t *testing.T) {
	s := testutil.Daily([]float64{1, 2, 3, 4}, 10)

	adv, ok := AverageDollarVolume(s, 2)
	require.True(t, ok)
	assert.Equal(t, "35", adv.String())

	_, ok = AverageDollarVolume(s, 5)
	assert.False(t, ok)
}

// === Data quality ===

func TestDataQuality(t *testing.T) {
	cfg := strategyconfig.DataQuality{MinSeriesLength: 100, MaxGapTolerance: 5}

	tests := []struct {
		name   string
		mutate func(s contracts.Series) contracts.Series
		reason string
	}{
		{"clean", func(s contracts.Series) contracts.Series { return s }, ""},
		{"duplicate dates", func(s contracts.Series) contracts.Series {
			s[50].Date = s[49].Date
			return s
		}, ReasonDuplicateDates},
		{"non-monotonic dates", func(s contracts.Series) contracts.Series {
			s[50].Date, s[51].Date = s[51].Date, s[50].Date
			return s
		}, ReasonNonMonotonic},
		{"negative close", func(s contracts.Series) contracts.Series {
			s[10].Close = -1
			return s
		}, ReasonInvalidPrice},
		{"infinite high", func(s contracts.Series) contracts.Series {
			s[10].High = math.Inf(1)
			return s
		}, ReasonInvalidPrice},
		{"negative volume", func(s contracts.Series) contracts.Series {
			s[10].Volume = -5
			return s
		}, ReasonNegativeVolume},
		{"missing volume is not malformed", func(s contracts.Series) contracts.Series {
			s[10].Volume = math.NaN()
			return s
		}, ""},
		{"too short", func(s contracts.Series) contracts.Series { return s[:50] }, contracts.ReasonInsufficientData},
		{"calendar gap", func(s contracts.Series) contracts.Series {
			for i := 60; i < len(s); i++ {
				s[i].Date = s[i].Date.AddDate(0, 0, 10)
			}
			return s
		}, ReasonDataGap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.mutate(uptrend(120))
			res := NewDataQualityFilter(cfg).Evaluate(dailyOnly("T", s))
			assert.Equal(t, tt.reason == "", res.Passed)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestDataQuality_MalformedWeeklyRejects(t *testing.T) {
	weekly := testutil.WeeklySeries(testutil.Linear(30, 100, 1), 5e6)
	weekly[5].Date = weekly[4].Date

	a := augment("T", contracts.TickerData{contracts.Daily: uptrend(120), contracts.Weekly: weekly})
	res := NewDataQualityFilter(strategyconfig.Default().DataQuality).Evaluate(a)

	assert.False(t, res.Passed)
	assert.Equal(t, ReasonDuplicateDates, res.Reason)
	assert.Contains(t, res.Detail, "weekly")
}

func TestDataQuality_NoDaily(t *testing.T) {
	a := augment("T", contracts.TickerData{contracts.Weekly: testutil.WeeklySeries(testutil.Constant(30, 10), 1)})
	res := NewDataQualityFilter(strategyconfig.Default().DataQuality).Evaluate(a)
	assert.Equal(t, contracts.ReasonInsufficientData, res.Reason)
}

// === Trend existence ===

func TestTrendFilter(t *testing.T) {
	def := strategyconfig.Default().Trend
	steep := def
	steep.MinSlope = 1.0

	tests := []struct {
		name   string
		cfg    strategyconfig.Trend
		series contracts.Series
		reason string
	}{
		{"strong uptrend", def, uptrend(150), ""},
		{"strong downtrend", def, testutil.Daily(testutil.Geometric(150, 400, -0.01), 1e6), ""},
		{"flat prices", def, testutil.Flat(150, 10, 1e6), ReasonWeakTrend},
		{"slope below floor", steep, uptrend(150), ReasonFlatMovingAvg},
		{"adx warm-up not met", def, uptrend(20), contracts.ReasonInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewTrendFilter(tt.cfg).Evaluate(dailyOnly("T", tt.series))
			assert.Equal(t, tt.reason == "", res.Passed)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestTrendFilter_RecordsMeasurements(t *testing.T) {
	res := NewTrendFilter(strategyconfig.Default().Trend).Evaluate(dailyOnly("T", uptrend(150)))
	require.True(t, res.Passed)
	assert.Greater(t, res.Measured["adx"], 20.0)
	assert.Greater(t, res.Measured["ma_slope"], 0.001)
}

// === Apply ===

func TestApply_SplitsBatch(t *testing.T) {
	f := NewLiquidityFilter(strategyconfig.Default().Liquidity)
	batch := []*indicator.Augmented{
		dailyOnly("AAA", testutil.Daily(testutil.Constant(30, 50), 1e6)),
		dailyOnly("BBB", testutil.Daily(testutil.Constant(30, 50), 10)),
		dailyOnly("CCC", testutil.Daily(testutil.Constant(30, 20), 1e6)),
	}

	passed, rejected := Apply(f, batch)

	require.Len(t, passed, 2)
	assert.Equal(t, "AAA", passed[0].Ticker)
	assert.Equal(t, "CCC", passed[1].Ticker)
	require.Len(t, rejected, 1)
	assert.Equal(t, "BBB", rejected[0].Ticker)
	assert.Equal(t, ReasonBelowFloor, rejected[0].Reason)
}
