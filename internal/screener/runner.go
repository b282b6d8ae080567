package screener

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/provider"
	"github.com/wonny/trendscreen/internal/report"
	"github.com/wonny/trendscreen/pkg/logger"
)

// Runner chains load, screen, save and report for one invocation.
// The store and report writer are optional.
type Runner struct {
	screener *Screener
	loader   *provider.Loader
	store    contracts.ResultStore
	reports  *report.Writer
	logger   *logger.Logger
}

// RunOptions narrows one invocation.
type RunOptions struct {
	Tickers []string      // empty = full provider universe
	Timeout time.Duration // 0 = no deadline
}

// RunOutput is what one invocation produced.
type RunOutput struct {
	Result     *contracts.ScreeningResult
	ReportPath string // empty when no report was written
	Saved      bool
	Duration   time.Duration
}

// NewRunner creates a runner. store and reports may be nil.
func NewRunner(s *Screener, loader *provider.Loader, store contracts.ResultStore, reports *report.Writer, log *logger.Logger) *Runner {
	return &Runner{
		screener: s,
		loader:   loader,
		store:    store,
		reports:  reports,
		logger:   log,
	}
}

// Screener returns the wrapped screener.
func (r *Runner) Screener() *Screener {
	return r.screener
}

// Run loads market data, screens it and hands the result to the store and
// report writer. The timeout bounds screening only; a partial result is
// still saved and reported.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunOutput, error) {
	start := time.Now()

	data, err := r.loader.Load(ctx, opts.Tickers)
	if err != nil {
		return nil, fmt.Errorf("load market data: %w", err)
	}

	screenCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		screenCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	out := &RunOutput{Result: r.screener.Run(screenCtx, data)}

	if r.store != nil {
		if err := r.store.Save(ctx, out.Result); err != nil {
			return out, fmt.Errorf("save result: %w", err)
		}
		out.Saved = true
	}

	if r.reports != nil {
		path, err := r.reports.Write(out.Result)
		if err != nil {
			return out, fmt.Errorf("write report: %w", err)
		}
		out.ReportPath = path
	}

	out.Duration = time.Since(start)
	r.logger.WithFields(map[string]interface{}{
		"run_id":   out.Result.RunID,
		"ranked":   len(out.Result.Ranked),
		"saved":    out.Saved,
		"report":   out.ReportPath,
		"duration": out.Duration.String(),
	}).Info("Screening pipeline finished")

	return out, nil
}
