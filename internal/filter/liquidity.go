package filter

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// LiquidityFilter rejects tickers whose trailing average dollar volume is
// below the floor. The comparison is done in decimal so a ticker sitting
// exactly on the floor passes.
type LiquidityFilter struct {
	cfg      strategyconfig.Liquidity
	floor    decimal.Decimal
	minPrice decimal.Decimal
}

// NewLiquidityFilter creates a liquidity gate
func NewLiquidityFilter(cfg strategyconfig.Liquidity) *LiquidityFilter {
	return &LiquidityFilter{
		cfg:      cfg,
		floor:    decimal.NewFromFloat(cfg.MinDollarVolume),
		minPrice: decimal.NewFromFloat(cfg.MinPrice),
	}
}

// Name implements Filter.
func (f *LiquidityFilter) Name() string { return NameLiquidity }

// Evaluate implements Filter.
func (f *LiquidityFilter) Evaluate(a *indicator.Augmented) contracts.FilterResult {
	daily := a.Raw[contracts.Daily]

	adv, ok := AverageDollarVolume(daily, f.cfg.Window)
	if !ok {
		return reject(NameLiquidity, a.Ticker, contracts.ReasonInsufficientData, nil,
			"need %d bars with volume, have %d", f.cfg.Window, len(daily))
	}

	last, _ := daily.Last()
	measured := map[string]float64{
		"avg_dollar_volume": adv.InexactFloat64(),
		"last_close":        last.Close,
	}

	if f.cfg.MinPrice > 0 && decimal.NewFromFloat(last.Close).LessThan(f.minPrice) {
		return reject(NameLiquidity, a.Ticker, ReasonPriceBelowMin, measured,
			"close %.2f < %.2f", last.Close, f.cfg.MinPrice)
	}

	if adv.LessThan(f.floor) {
		return reject(NameLiquidity, a.Ticker, ReasonBelowFloor, measured,
			"avg dollar volume %s < %s", adv.StringFixed(2), f.floor.StringFixed(2))
	}

	return pass(NameLiquidity, a.Ticker, measured)
}

// AverageDollarVolume averages close × volume over the last window bars.
// It reports false when the series is shorter than window or any bar in
// the window lacks volume.
func AverageDollarVolume(s contracts.Series, window int) (decimal.Decimal, bool) {
	if window < 1 || len(s) < window {
		return decimal.Zero, false
	}

	sum := decimal.Zero
	for _, b := range s.Tail(window) {
		if !b.HasVolume() {
			return decimal.Zero, false
		}
		sum = sum.Add(decimal.NewFromFloat(b.Close).Mul(decimal.NewFromFloat(b.Volume)))
	}
	return sum.Div(decimal.NewFromInt(int64(window))), true
}
