package filter

import (
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// Chain composes filters by intersection. Data quality runs first and the
// chain stops at the first rejection.
type Chain struct {
	filters []Filter
}

// Outcome is the chain decision for one ticker.
type Outcome struct {
	Ticker  string
	Passed  bool
	Results []contracts.FilterResult
	// Trend is set when the alignment gate ran for this ticker.
	Trend *contracts.TrendState
}

// Rejection returns the failing result, if any.
func (o Outcome) Rejection() (contracts.FilterResult, bool) {
	for _, r := range o.Results {
		if !r.Passed {
			return r, true
		}
	}
	return contracts.FilterResult{}, false
}

// NewChain builds the standard chain from the run config. The alignment
// gate is left out when weekly_trend.enabled is false.
func NewChain(cfg *strategyconfig.Config) *Chain {
	c := &Chain{
		filters: []Filter{
			NewDataQualityFilter(cfg.DataQuality),
			NewLiquidityFilter(cfg.Liquidity),
			NewTrendFilter(cfg.Trend),
		},
	}
	if cfg.WeeklyTrend.Enabled {
		c.filters = append(c.filters, NewWeeklyTrendFilter(cfg.WeeklyTrend))
	}
	return c
}

// Names returns the filter names in evaluation order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.filters))
	for i, f := range c.filters {
		names[i] = f.Name()
	}
	return names
}

// Evaluate runs the chain for one ticker.
func (c *Chain) Evaluate(a *indicator.Augmented) Outcome {
	out := Outcome{
		Ticker:  a.Ticker,
		Results: make([]contracts.FilterResult, 0, len(c.filters)),
	}

	for _, f := range c.filters {
		var res contracts.FilterResult
		if w, ok := f.(*WeeklyTrendFilter); ok {
			var state contracts.TrendState
			res, state = w.EvaluateState(a)
			out.Trend = &state
		} else {
			res = f.Evaluate(a)
		}

		out.Results = append(out.Results, res)
		if !res.Passed {
			return out
		}
	}

	out.Passed = true
	return out
}

// Apply runs the chain over a batch, like the package-level Apply.
func (c *Chain) Apply(tickers []*indicator.Augmented) ([]*indicator.Augmented, []contracts.FilterResult) {
	passed := make([]*indicator.Augmented, 0, len(tickers))
	var rejected []contracts.FilterResult

	for _, a := range tickers {
		out := c.Evaluate(a)
		if out.Passed {
			passed = append(passed, a)
			continue
		}
		r, _ := out.Rejection()
		rejected = append(rejected, r)
	}
	return passed, rejected
}
