package filter

import (
	"fmt"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// WeeklyTrendFilter rejects tickers whose daily direction contradicts an
// established weekly trend. Missing or short weekly data never rejects.
type WeeklyTrendFilter struct {
	cfg strategyconfig.WeeklyTrend
}

// NewWeeklyTrendFilter creates the daily/weekly alignment gate
func NewWeeklyTrendFilter(cfg strategyconfig.WeeklyTrend) *WeeklyTrendFilter {
	return &WeeklyTrendFilter{cfg: cfg}
}

// Name implements Filter.
func (f *WeeklyTrendFilter) Name() string { return NameWeeklyTrend }

// Evaluate implements Filter.
func (f *WeeklyTrendFilter) Evaluate(a *indicator.Augmented) contracts.FilterResult {
	res, _ := f.EvaluateState(a)
	return res
}

// EvaluateState is Evaluate plus the TrendState behind the decision.
func (f *WeeklyTrendFilter) EvaluateState(a *indicator.Augmented) (contracts.FilterResult, contracts.TrendState) {
	state := f.Analyze(a)

	measured := make(map[string]float64)
	if state.WeeklySlope != nil {
		measured["weekly_slope"] = *state.WeeklySlope
	}
	if state.DailySlope != nil {
		measured["daily_slope"] = *state.DailySlope
	}

	if state.RejectionReason != "" {
		return reject(NameWeeklyTrend, a.Ticker, contracts.ReasonTrendConflict, measured,
			"%s", state.RejectionReason), state
	}
	return pass(NameWeeklyTrend, a.Ticker, measured), state
}

// Analyze builds the TrendState of one ticker. RejectionReason is only set
// when alignment is enforced.
func (f *WeeklyTrendFilter) Analyze(a *indicator.Augmented) contracts.TrendState {
	state := contracts.TrendState{
		Ticker:      a.Ticker,
		WeeklyTrend: contracts.TrendUnknown,
		DailyTrend:  contracts.TrendUnknown,
	}

	if daily := a.Daily(); daily.Len() > 0 {
		slope := indicator.Slope(daily.MA(f.cfg.DailyMAPeriod), f.cfg.DailyLookback)
		state.DailySlope = slope.Ptr()
		state.DailyTrend = Label(slope, f.cfg.SidewaysThreshold)
	}

	if weekly := a.Weekly(); weekly.Len() > 0 {
		ma := weekly.MA(f.cfg.MAPeriod)
		slope := indicator.Slope(ma, f.cfg.SlopeLookbackWeeks)
		state.WeeklyMA = ma.Last().Ptr()
		state.WeeklySlope = slope.Ptr()
		state.WeeklyTrend = Label(slope, f.cfg.SidewaysThreshold)
	}

	state.Aligned = !state.Conflicting()
	if !state.Aligned && f.cfg.RequireAlignment {
		state.RejectionReason = fmt.Sprintf("daily %s vs weekly %s", state.DailyTrend, state.WeeklyTrend)
	}
	return state
}

// Label classifies a fractional slope against a symmetric threshold.
func Label(slope indicator.Value, threshold float64) contracts.TrendLabel {
	s, ok := slope.Get()
	switch {
	case !ok:
		return contracts.TrendUnknown
	case s > threshold:
		return contracts.TrendUp
	case s < -threshold:
		return contracts.TrendDown
	default:
		return contracts.TrendSideways
	}
}

// Summarize counts alignment outcomes across states.
func Summarize(states []contracts.TrendState) contracts.TrendStats {
	var stats contracts.TrendStats
	for _, s := range states {
		stats.Add(s)
	}
	return stats
}
