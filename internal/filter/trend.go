package filter

import (
	"math"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// TrendFilter requires a trend to exist on the daily series: ADX at or
// above the floor and a moving average that is not flat. Unlike the
// alignment gate it does not degrade; a missing ADX is a rejection.
type TrendFilter struct {
	cfg strategyconfig.Trend
}

// NewTrendFilter creates a trend-existence gate
func NewTrendFilter(cfg strategyconfig.Trend) *TrendFilter {
	return &TrendFilter{cfg: cfg}
}

// Name implements Filter.
func (f *TrendFilter) Name() string { return NameTrend }

// Evaluate implements Filter.
func (f *TrendFilter) Evaluate(a *indicator.Augmented) contracts.FilterResult {
	frame := a.Daily()
	if frame.Len() == 0 {
		return reject(NameTrend, a.Ticker, contracts.ReasonInsufficientData, nil, "no daily series")
	}

	adx, ok := frame.Directional.ADX.Last().Get()
	if !ok {
		return reject(NameTrend, a.Ticker, contracts.ReasonInsufficientData, nil, "adx unavailable")
	}
	slope, ok := indicator.Slope(frame.MA(f.cfg.MAPeriod), f.cfg.SlopeLookback).Get()
	if !ok {
		return reject(NameTrend, a.Ticker, contracts.ReasonInsufficientData,
			map[string]float64{"adx": adx}, "ma%d slope unavailable", f.cfg.MAPeriod)
	}

	measured := map[string]float64{
		"adx":      adx,
		"ma_slope": slope,
	}

	if adx < f.cfg.MinADX {
		return reject(NameTrend, a.Ticker, ReasonWeakTrend, measured,
			"adx %.2f < %.2f", adx, f.cfg.MinADX)
	}
	if math.Abs(slope) < f.cfg.MinSlope {
		return reject(NameTrend, a.Ticker, ReasonFlatMovingAvg, measured,
			"|slope| %.5f < %.5f", math.Abs(slope), f.cfg.MinSlope)
	}

	return pass(NameTrend, a.Ticker, measured)
}
