package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/pkg/logger"
)

// Loader materializes a universe from a provider before a run.
type Loader struct {
	provider   contracts.DataProvider
	timeframes []contracts.Timeframe
	workers    int
	logger     *logger.Logger
}

// NewLoader creates a loader reading the given timeframes.
func NewLoader(p contracts.DataProvider, timeframes []contracts.Timeframe, workers int, log *logger.Logger) *Loader {
	if workers <= 0 {
		workers = 4
	}
	return &Loader{
		provider:   p,
		timeframes: timeframes,
		workers:    workers,
		logger:     log,
	}
}

// Load reads tickers, or the provider's full universe when tickers is empty.
// Tickers without data are skipped with a warning. Any other provider error
// aborts the load.
func (l *Loader) Load(ctx context.Context, tickers []string) (contracts.MarketData, error) {
	if len(tickers) == 0 {
		all, err := l.provider.Tickers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list universe: %w", err)
		}
		tickers = all
	}

	var (
		mu      sync.Mutex
		data    = make(contracts.MarketData, len(tickers))
		missing []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, ticker := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(ticker))
		g.Go(func() error {
			td, err := l.provider.Load(gctx, ticker, l.timeframes)
			if errors.Is(err, ErrNotFound) {
				mu.Lock()
				missing = append(missing, ticker)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("load %s: %w", ticker, err)
			}

			mu.Lock()
			data[ticker] = td
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"requested": len(tickers),
		"loaded":    len(data),
	}
	if len(missing) > 0 {
		fields["missing"] = len(missing)
		l.logger.WithFields(fields).Warn("Some tickers have no data")
	} else {
		l.logger.WithFields(fields).Info("Market data loaded")
	}

	return data, nil
}
