// Package filter implements the hard gates a ticker must pass before scoring.
package filter

import (
	"fmt"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
)

// Filter names as they appear in results and stats.
const (
	NameDataQuality = "data_quality"
	NameLiquidity   = "liquidity"
	NameTrend       = "trend_existence"
	NameWeeklyTrend = "weekly_trend"
)

// Reasons beyond the shared ones in contracts.
const (
	ReasonBelowFloor     = "below liquidity floor"
	ReasonPriceBelowMin  = "price below minimum"
	ReasonDataGap        = "data gap"
	ReasonDuplicateDates = "duplicate dates"
	ReasonNonMonotonic   = "non-monotonic dates"
	ReasonInvalidPrice   = "invalid price"
	ReasonNegativeVolume = "negative volume"
	ReasonWeakTrend      = "weak trend"
	ReasonFlatMovingAvg  = "flat moving average"
)

// Filter is one hard gate. Evaluate is a pure function of one ticker.
type Filter interface {
	Name() string
	Evaluate(a *indicator.Augmented) contracts.FilterResult
}

// Apply runs f over a batch and splits it into passed tickers and the
// rejections. Input order is preserved in both outputs.
func Apply(f Filter, tickers []*indicator.Augmented) ([]*indicator.Augmented, []contracts.FilterResult) {
	passed := make([]*indicator.Augmented, 0, len(tickers))
	var rejected []contracts.FilterResult

	for _, a := range tickers {
		res := f.Evaluate(a)
		if res.Passed {
			passed = append(passed, a)
			continue
		}
		rejected = append(rejected, res)
	}
	return passed, rejected
}

func pass(filter, ticker string, measured map[string]float64) contracts.FilterResult {
	return contracts.FilterResult{
		Ticker:   ticker,
		Filter:   filter,
		Passed:   true,
		Measured: measured,
	}
}

func reject(filter, ticker, reason string, measured map[string]float64, format string, args ...interface{}) contracts.FilterResult {
	return contracts.FilterResult{
		Ticker:   ticker,
		Filter:   filter,
		Reason:   reason,
		Detail:   fmt.Sprintf(format, args...),
		Measured: measured,
	}
}
