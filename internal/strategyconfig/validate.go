package strategyconfig

import (
	"fmt"
	"math"
	"sort"
)

// ValidationError aborts the run before any ticker is processed.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning flags a legal but questionable setting.
type Warning struct {
	Code    string
	Message string
}

// Validate checks every hard constraint and returns the first violation.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ValidationError{"config", "required"}
	}

	// === Liquidity ===
	l := cfg.Liquidity
	if err := validateNonNegative(l.MinDollarVolume, "liquidity.min_dollar_volume"); err != nil {
		return err
	}
	if l.Window < 1 {
		return ValidationError{"liquidity.window", "must be >= 1"}
	}
	if err := validateNonNegative(l.MinPrice, "liquidity.min_price"); err != nil {
		return err
	}
	if err := validateNonNegative(l.ExcellentDollarVolume, "liquidity.excellent_dollar_volume"); err != nil {
		return err
	}
	if l.ExcellentDollarVolume <= l.MinDollarVolume {
		return ValidationError{"liquidity.excellent_dollar_volume", "must be > min_dollar_volume"}
	}

	// === Data quality ===
	if cfg.DataQuality.MinSeriesLength < 1 {
		return ValidationError{"data_quality.min_series_length", "must be >= 1"}
	}
	if cfg.DataQuality.MaxGapTolerance < 1 {
		return ValidationError{"data_quality.max_gap_tolerance", "must be >= 1"}
	}

	// === Trend existence ===
	t := cfg.Trend
	if err := validateRange(t.MinADX, 0, 100, "trend.min_adx"); err != nil {
		return err
	}
	if err := validateNonNegative(t.MinSlope, "trend.min_slope"); err != nil {
		return err
	}
	if t.MAPeriod < 1 {
		return ValidationError{"trend.ma_period", "must be >= 1"}
	}
	if t.SlopeLookback < 1 {
		return ValidationError{"trend.slope_lookback", "must be >= 1"}
	}

	// === Weekly trend ===
	w := cfg.WeeklyTrend
	if w.MAPeriod < 1 {
		return ValidationError{"weekly_trend.ma_period", "must be >= 1"}
	}
	if w.SlopeLookbackWeeks < 1 {
		return ValidationError{"weekly_trend.slope_lookback_weeks", "must be >= 1"}
	}
	if err := validateNonNegative(w.SidewaysThreshold, "weekly_trend.sideways_threshold"); err != nil {
		return err
	}
	if w.DailyMAPeriod < 1 {
		return ValidationError{"weekly_trend.daily_ma_period", "must be >= 1"}
	}
	if w.DailyLookback < 1 {
		return ValidationError{"weekly_trend.daily_lookback", "must be >= 1"}
	}

	// === Trend scorer ===
	ts := cfg.TrendScorer
	if ts.Name == "" {
		return ValidationError{"trend_scorer.name", "required"}
	}
	if len(ts.MAPeriods) == 0 {
		return ValidationError{"trend_scorer.ma_periods", "must not be empty"}
	}
	for i, p := range ts.MAPeriods {
		if p < 1 {
			return ValidationError{fmt.Sprintf("trend_scorer.ma_periods[%d]", i), "must be >= 1"}
		}
		if i > 0 && p <= ts.MAPeriods[i-1] {
			return ValidationError{"trend_scorer.ma_periods", "must be strictly ascending"}
		}
	}
	if err := validatePositive(ts.StrongADX, "trend_scorer.strong_adx"); err != nil {
		return err
	}
	if err := validateWeights("trend_scorer.weights", map[string]float64{
		"ma": ts.Weights.MA, "adx": ts.Weights.ADX,
	}); err != nil {
		return err
	}
	if err := validateWeights("trend_scorer.weights", map[string]float64{
		"momentum": ts.Weights.Momentum, "position": ts.Weights.Position,
	}); err != nil {
		return err
	}

	// === Signals ===
	if err := validateSignals(cfg.Signals); err != nil {
		return err
	}

	// === Indicators ===
	ind := cfg.Indicators
	for i, p := range ind.MAPeriods {
		if p < 1 {
			return ValidationError{fmt.Sprintf("indicators.ma_periods[%d]", i), "must be >= 1"}
		}
	}
	periods := map[string]int{
		"indicators.rsi_period":       ind.RSIPeriod,
		"indicators.macd.fast":        ind.MACD.Fast,
		"indicators.macd.slow":        ind.MACD.Slow,
		"indicators.macd.signal":      ind.MACD.Signal,
		"indicators.bollinger.period": ind.Bollinger.Period,
		"indicators.atr_period":       ind.ATRPeriod,
		"indicators.adx_period":       ind.ADXPeriod,
		"indicators.volume_period":    ind.VolumePeriod,
		"indicators.range_period":     ind.RangePeriod,
	}
	for _, field := range sortedKeys(periods) {
		if periods[field] < 1 {
			return ValidationError{field, "must be >= 1"}
		}
	}
	if ind.MACD.Fast >= ind.MACD.Slow {
		return ValidationError{"indicators.macd", "fast must be < slow"}
	}
	if ind.Bollinger.Period < 2 {
		return ValidationError{"indicators.bollinger.period", "must be >= 2"}
	}
	if err := validatePositive(ind.Bollinger.StdDev, "indicators.bollinger.std_dev"); err != nil {
		return err
	}

	// === Scoring ===
	sw := cfg.Scoring.Weights
	if err := validateWeights("scoring.weights", map[string]float64{
		"liquidity": sw.Liquidity, "trend": sw.Trend, "signal": sw.Signal,
	}); err != nil {
		return err
	}
	if cfg.Scoring.TopN < 1 {
		return ValidationError{"scoring.top_n", "must be >= 1"}
	}

	if cfg.Workers < 0 {
		return ValidationError{"workers", "must be >= 0"}
	}

	return nil
}

func validateSignals(s Signals) error {
	mc := s.MACrossover
	if mc.ShortPeriod < 1 || mc.LongPeriod < 1 {
		return ValidationError{"signals.ma_crossover", "periods must be >= 1"}
	}
	if mc.ShortPeriod >= mc.LongPeriod {
		return ValidationError{"signals.ma_crossover", "short_period must be < long_period"}
	}
	if err := validateNonNegative(mc.Weight, "signals.ma_crossover.weight"); err != nil {
		return err
	}

	vs := s.VolumeSurge
	if err := validatePositive(vs.SurgeMultiplier, "signals.volume_surge.surge_multiplier"); err != nil {
		return err
	}
	if math.IsNaN(vs.MinPriceChange) || math.IsInf(vs.MinPriceChange, 0) {
		return ValidationError{"signals.volume_surge.min_price_change", "must be a finite number"}
	}
	if err := validateNonNegative(vs.Weight, "signals.volume_surge.weight"); err != nil {
		return err
	}

	b := s.Breakout
	if b.Lookback < 1 {
		return ValidationError{"signals.breakout.lookback", "must be >= 1"}
	}
	if err := validateNonNegative(b.MinVolumeRatio, "signals.breakout.min_volume_ratio"); err != nil {
		return err
	}
	if err := validateNonNegative(b.Weight, "signals.breakout.weight"); err != nil {
		return err
	}

	r := s.RSI
	switch r.Mode {
	case "oversold", "overbought", "both":
	default:
		return ValidationError{"signals.rsi.mode", fmt.Sprintf("must be oversold, overbought or both, got %q", r.Mode)}
	}
	if err := validateRange(r.Oversold, 0, 100, "signals.rsi.oversold"); err != nil {
		return err
	}
	if err := validateRange(r.Overbought, 0, 100, "signals.rsi.overbought"); err != nil {
		return err
	}
	if r.Oversold >= r.Overbought {
		return ValidationError{"signals.rsi", "oversold must be < overbought"}
	}
	if err := validateNonNegative(r.OversoldWeight, "signals.rsi.oversold_weight"); err != nil {
		return err
	}
	return validateNonNegative(r.OverboughtWeight, "signals.rsi.overbought_weight")
}

// Normalize returns a copy whose weight groups each sum to 1.
func Normalize(cfg *Config) *Config {
	out := cfg.Clone()

	sw := &out.Scoring.Weights
	if sum := sw.Sum(); sum > 0 && math.Abs(sum-1) > weightEpsilon {
		sw.Liquidity /= sum
		sw.Trend /= sum
		sw.Signal /= sum
	}

	tw := &out.TrendScorer.Weights
	if sum := tw.MA + tw.ADX; sum > 0 && math.Abs(sum-1) > weightEpsilon {
		tw.MA /= sum
		tw.ADX /= sum
	}
	if sum := tw.Momentum + tw.Position; sum > 0 && math.Abs(sum-1) > weightEpsilon {
		tw.Momentum /= sum
		tw.Position /= sum
	}

	return out
}

const weightEpsilon = 1e-9

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if sum := cfg.Scoring.Weights.Sum(); math.Abs(sum-1) > weightEpsilon {
		warnings = append(warnings, Warning{
			Code:    "WEIGHTS_NORMALIZED",
			Message: fmt.Sprintf("scoring weights sum to %.4f and will be rescaled to 1", sum),
		})
	}

	if cfg.Liquidity.MinDollarVolume < 500_000 {
		warnings = append(warnings, Warning{
			Code:    "LOW_LIQUIDITY_FLOOR",
			Message: "min_dollar_volume < 500k: fills may be unreliable",
		})
	}

	if cfg.WeeklyTrend.Enabled && !cfg.WeeklyTrend.RequireAlignment {
		warnings = append(warnings, Warning{
			Code:    "ALIGNMENT_NOT_ENFORCED",
			Message: "weekly trend state is computed but conflicts never reject",
		})
	}

	longest := 2 * cfg.Indicators.ADXPeriod
	for _, p := range cfg.TrendScorer.MAPeriods {
		if p > longest {
			longest = p
		}
	}
	if cfg.DataQuality.MinSeriesLength < longest {
		warnings = append(warnings, Warning{
			Code:    "SHORT_HISTORY",
			Message: fmt.Sprintf("min_series_length %d < %d: some indicators will be unavailable", cfg.DataQuality.MinSeriesLength, longest),
		})
	}

	return warnings
}

// === Helper Functions ===

func validateNonNegative(v float64, field string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ValidationError{field, "must be a finite number"}
	}
	if v < 0 {
		return ValidationError{field, "must be >= 0"}
	}
	return nil
}

func validatePositive(v float64, field string) error {
	if err := validateNonNegative(v, field); err != nil {
		return err
	}
	if v == 0 {
		return ValidationError{field, "must be > 0"}
	}
	return nil
}

func validateRange(v, lo, hi float64, field string) error {
	if err := validateNonNegative(v, field); err != nil {
		return err
	}
	if v < lo || v > hi {
		return ValidationError{field, fmt.Sprintf("must be in range [%g, %g]", lo, hi)}
	}
	return nil
}

func validateWeights(group string, weights map[string]float64) error {
	sum := 0.0
	for _, name := range sortedKeys(weights) {
		if err := validateNonNegative(weights[name], group+"."+name); err != nil {
			return err
		}
		sum += weights[name]
	}
	if sum <= 0 {
		return ValidationError{group, "must not all be zero"}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
