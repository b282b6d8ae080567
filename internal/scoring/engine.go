// Package scoring combines sub-scores into the composite and ranks tickers.
package scoring

import (
	"math"
	"sort"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/strategyconfig"
	"github.com/wonny/trendscreen/pkg/logger"
)

// Candidate carries the sub-scores of one ticker that passed every filter.
// All scores are on [0, 100].
type Candidate struct {
	Ticker    string
	Liquidity float64
	Trend     contracts.TrendScore
	Signal    float64
	Signals   []string
}

// Engine ranks candidates by weighted composite score
type Engine struct {
	weights strategyconfig.ScoringWeights
	topN    int
	logger  *logger.Logger
}

// NewEngine creates a scoring engine. Weights are rescaled to sum to 1.
func NewEngine(cfg strategyconfig.Scoring, log *logger.Logger) *Engine {
	w := cfg.Weights
	if sum := w.Sum(); sum > 0 && math.Abs(sum-1) > 1e-9 {
		w = strategyconfig.ScoringWeights{
			Liquidity: w.Liquidity / sum,
			Trend:     w.Trend / sum,
			Signal:    w.Signal / sum,
		}
	}
	return &Engine{
		weights: w,
		topN:    cfg.TopN,
		logger:  log,
	}
}

// Weights returns the normalized weights in use.
func (e *Engine) Weights() strategyconfig.ScoringWeights {
	return e.weights
}

// Composite is the weighted sum, rounded to cents and clamped to [0, 100].
func (e *Engine) Composite(liquidity, trend, signal float64) float64 {
	v := e.weights.Liquidity*liquidity + e.weights.Trend*trend + e.weights.Signal*signal
	return math.Max(0, math.Min(100, math.Round(v*100)/100))
}

// ScoreAndRank scores every candidate, sorts by composite descending with
// ticker ascending on ties, assigns 1-based ranks and keeps the top N.
// No candidates is a valid outcome and yields an empty, non-nil slice.
func (e *Engine) ScoreAndRank(candidates []Candidate) []contracts.ScoreRecord {
	ranked := make([]contracts.ScoreRecord, 0, len(candidates))

	for _, c := range candidates {
		composite := e.Composite(c.Liquidity, c.Trend.Total, c.Signal)
		ranked = append(ranked, contracts.ScoreRecord{
			Ticker:         c.Ticker,
			LiquidityScore: c.Liquidity,
			TrendScore:     c.Trend.Total,
			TrendBreakdown: c.Trend.Breakdown,
			SignalScore:    c.Signal,
			CompositeScore: composite,
			Signals:        c.Signals,
			Confidence:     Confidence(composite, c.Trend.Total, len(c.Signals)),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CompositeScore != ranked[j].CompositeScore {
			return ranked[i].CompositeScore > ranked[j].CompositeScore
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	if e.topN > 0 && len(ranked) > e.topN {
		ranked = ranked[:e.topN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	fields := map[string]interface{}{
		"candidates": len(candidates),
		"ranked":     len(ranked),
	}
	if len(ranked) > 0 {
		fields["top_ticker"] = ranked[0].Ticker
		fields["top_score"] = ranked[0].CompositeScore
	}
	e.logger.WithFields(fields).Debug("Ranking completed")

	return ranked
}

// Confidence labels a ranked ticker from its composite, trend score and
// the number of signals that fired.
func Confidence(composite, trend float64, signals int) contracts.Confidence {
	switch {
	case composite >= 80 && trend >= 70 && signals >= 2:
		return contracts.ConfidenceHigh
	case composite >= 65 && trend >= 50:
		return contracts.ConfidenceMedium
	default:
		return contracts.ConfidenceLow
	}
}
