// Package screener runs the per-ticker pipeline over a universe and merges
// the outcomes into one ranked result.
package screener

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/filter"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/scoring"
	"github.com/wonny/trendscreen/internal/signal"
	"github.com/wonny/trendscreen/internal/strategyconfig"
	"github.com/wonny/trendscreen/internal/trendscore"
	"github.com/wonny/trendscreen/pkg/logger"
)

// Screener coordinates indicators, filters, trend scoring, signals and
// ranking. It holds no per-run state and is safe for concurrent Runs.
type Screener struct {
	cfg      *strategyconfig.Config
	hash     string
	indCfg   indicator.Config
	chain    *filter.Chain
	scorer   trendscore.Scorer
	detector *signal.Detector
	engine   *scoring.Engine
	workers  int
	logger   *logger.Logger
}

// Evaluation is the full outcome of one ticker.
type Evaluation struct {
	Ticker    string
	Outcome   filter.Outcome
	Candidate *scoring.Candidate // nil when rejected
}

// New validates cfg and builds a screener. Any configuration problem is
// returned before a single ticker is touched.
func New(cfg *strategyconfig.Config, log *logger.Logger) (*Screener, error) {
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}
	cfg = strategyconfig.Normalize(cfg)

	scorer, err := trendscore.New(cfg.TrendScorer)
	if err != nil {
		return nil, fmt.Errorf("trend scorer: %w", err)
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash strategy config: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Screener{
		cfg:      cfg,
		hash:     hash,
		indCfg:   cfg.IndicatorConfig(),
		chain:    filter.NewChain(cfg),
		scorer:   scorer,
		detector: signal.NewDetector(cfg.Signals),
		engine:   scoring.NewEngine(cfg.Scoring, log),
		workers:  workers,
		logger:   log,
	}, nil
}

// Config returns the normalized run config.
func (s *Screener) Config() *strategyconfig.Config {
	return s.cfg
}

// ConfigHash returns the hash stamped into every result.
func (s *Screener) ConfigHash() string {
	return s.hash
}

// Evaluate runs the pipeline for one ticker up to, but not including,
// ranking. It only reads td.
func (s *Screener) Evaluate(ticker string, td contracts.TickerData) Evaluation {
	a := indicator.Augment(ticker, td, s.indCfg)

	ev := Evaluation{
		Ticker:  ticker,
		Outcome: s.chain.Evaluate(a),
	}
	if !ev.Outcome.Passed {
		return ev
	}

	daily := a.Daily()
	trend := s.scorer.Score(daily)
	signals := s.detector.Detect(daily)

	ev.Candidate = &scoring.Candidate{
		Ticker:    ticker,
		Liquidity: scoring.LiquidityScore(td[contracts.Daily], s.cfg.Liquidity),
		Trend:     trend,
		Signal:    signal.Score(signals),
		Signals:   signal.Types(signals),
	}
	return ev
}

// Run screens every ticker in data. Tickers fan out across workers; each
// writes only its own slot, and the merge happens after Wait. When ctx is
// cancelled no new tickers start, finished ones are still ranked, and the
// result is marked partial.
func (s *Screener) Run(ctx context.Context, data contracts.MarketData) *contracts.ScreeningResult {
	started := time.Now()
	tickers := data.Tickers()

	s.logger.WithFields(map[string]interface{}{
		"tickers":     len(tickers),
		"workers":     s.workers,
		"scorer":      s.scorer.Name(),
		"config_hash": s.hash[:12],
	}).Info("Starting screening run")

	slots := make([]*Evaluation, len(tickers))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, ticker := range tickers {
		if ctx.Err() != nil {
			break
		}
		i, ticker := i, ticker
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			ev := s.Evaluate(ticker, data[ticker])
			slots[i] = &ev
			return nil
		})
	}
	_ = g.Wait()

	result := s.merge(tickers, slots)
	result.StartedAt = started
	result.FinishedAt = time.Now()

	fields := map[string]interface{}{
		"run_id":      result.RunID,
		"tickers":     result.Universe,
		"ranked":      len(result.Ranked),
		"rejected":    len(result.Rejected),
		"aligned":     result.TrendStats.Aligned,
		"conflicting": result.TrendStats.Conflicting,
		"sideways":    result.TrendStats.Sideways,
		"unknown":     result.TrendStats.Unknown,
		"duration_ms": result.FinishedAt.Sub(started).Milliseconds(),
	}
	for name, st := range result.FilterStats {
		fields["rejected_"+name] = st.Rejected
	}

	if result.Partial {
		fields["skipped"] = len(result.Skipped)
		s.logger.WithFields(fields).Warn("Screening run cancelled, returning partial result")
	} else {
		s.logger.WithFields(fields).Info("Screening run completed")
	}

	return result
}

// merge folds per-ticker slots into the result in ticker order.
func (s *Screener) merge(tickers []string, slots []*Evaluation) *contracts.ScreeningResult {
	result := &contracts.ScreeningResult{
		RunID:       uuid.NewString(),
		ConfigHash:  s.hash,
		Universe:    len(tickers),
		Rejected:    make(map[string][]contracts.FilterResult),
		FilterStats: make(map[string]*contracts.FilterStats),
		TrendStates: make(map[string]contracts.TrendState),
	}
	for _, name := range s.chain.Names() {
		result.FilterStats[name] = &contracts.FilterStats{}
	}

	candidates := make([]scoring.Candidate, 0, len(tickers))

	for i, ev := range slots {
		if ev == nil {
			result.Skipped = append(result.Skipped, tickers[i])
			continue
		}

		for _, r := range ev.Outcome.Results {
			if st, ok := result.FilterStats[r.Filter]; ok {
				st.Add(r)
			}
		}
		if ev.Outcome.Trend != nil {
			result.TrendStates[ev.Ticker] = *ev.Outcome.Trend
			result.TrendStats.Add(*ev.Outcome.Trend)
		}

		if ev.Candidate == nil {
			result.Rejected[ev.Ticker] = ev.Outcome.Results
			if r, ok := ev.Outcome.Rejection(); ok {
				s.logger.WithFields(map[string]interface{}{
					"ticker": r.Ticker,
					"filter": r.Filter,
					"reason": r.Reason,
					"detail": r.Detail,
				}).Debug("Ticker rejected")
			}
			continue
		}
		candidates = append(candidates, *ev.Candidate)
	}

	result.Ranked = s.engine.ScoreAndRank(candidates)
	result.Partial = len(result.Skipped) > 0
	return result
}
