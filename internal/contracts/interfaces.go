package contracts

import "context"

// DataProvider hands the core materialized series. Fetching, rate limiting
// and vendor parsing all live behind it.
type DataProvider interface {
	// Tickers lists the symbols the provider can serve.
	Tickers(ctx context.Context) ([]string, error)

	// Load returns the series of ticker for the requested timeframes.
	// A missing timeframe is omitted from the map, not an error.
	Load(ctx context.Context, ticker string, timeframes []Timeframe) (TickerData, error)
}

// ResultStore persists screening results.
type ResultStore interface {
	Save(ctx context.Context, result *ScreeningResult) error
	Latest(ctx context.Context) (*ScreeningResult, error)
	Get(ctx context.Context, runID string) (*ScreeningResult, error)
}
