package strategyconfig

import "github.com/wonny/trendscreen/internal/indicator"

// Config is the full screening strategy. It is built once per run and
// passed by pointer; nothing mutates it after Load.
type Config struct {
	Meta        Meta        `yaml:"meta" json:"meta"`
	Liquidity   Liquidity   `yaml:"liquidity" json:"liquidity"`
	DataQuality DataQuality `yaml:"data_quality" json:"data_quality"`
	Trend       Trend       `yaml:"trend" json:"trend"`
	WeeklyTrend WeeklyTrend `yaml:"weekly_trend" json:"weekly_trend"`
	TrendScorer TrendScorer `yaml:"trend_scorer" json:"trend_scorer"`
	Signals     Signals     `yaml:"signals" json:"signals"`
	Indicators  Indicators  `yaml:"indicators" json:"indicators"`
	Scoring     Scoring     `yaml:"scoring" json:"scoring"`
	Workers     int         `yaml:"workers" json:"workers"` // 0 = process default
}

// Meta identifies the strategy.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Liquidity gate and liquidity sub-score.
type Liquidity struct {
	MinDollarVolume       float64 `yaml:"min_dollar_volume" json:"min_dollar_volume"`
	Window                int     `yaml:"window" json:"window"`
	MinPrice              float64 `yaml:"min_price" json:"min_price"` // 0 disables
	ExcellentDollarVolume float64 `yaml:"excellent_dollar_volume" json:"excellent_dollar_volume"`
}

// DataQuality gate.
type DataQuality struct {
	MinSeriesLength int `yaml:"min_series_length" json:"min_series_length"`
	MaxGapTolerance int `yaml:"max_gap_tolerance" json:"max_gap_tolerance"` // calendar days
}

// Trend is the trend-existence gate on the daily series.
type Trend struct {
	MinADX        float64 `yaml:"min_adx" json:"min_adx"`
	MinSlope      float64 `yaml:"min_slope" json:"min_slope"` // fraction, compared to |slope|
	MAPeriod      int     `yaml:"ma_period" json:"ma_period"`
	SlopeLookback int     `yaml:"slope_lookback" json:"slope_lookback"`
}

// WeeklyTrend is the daily/weekly alignment gate.
type WeeklyTrend struct {
	Enabled            bool    `yaml:"enabled" json:"enabled"`
	MAPeriod           int     `yaml:"ma_period" json:"ma_period"`
	SlopeLookbackWeeks int     `yaml:"slope_lookback_weeks" json:"slope_lookback_weeks"`
	SidewaysThreshold  float64 `yaml:"sideways_threshold" json:"sideways_threshold"`
	RequireAlignment   bool    `yaml:"require_alignment" json:"require_alignment"`
	DailyMAPeriod      int     `yaml:"daily_ma_period" json:"daily_ma_period"`
	DailyLookback      int     `yaml:"daily_lookback" json:"daily_lookback"`
}

// TrendScorer selects and tunes the trend scoring strategy.
type TrendScorer struct {
	Name      string             `yaml:"name" json:"name"`
	MAPeriods []int              `yaml:"ma_periods" json:"ma_periods"`
	StrongADX float64            `yaml:"strong_adx" json:"strong_adx"`
	Weights   TrendScorerWeights `yaml:"weights" json:"weights"`
}

// TrendScorerWeights holds sub-score weights; each scorer reads its own pair.
type TrendScorerWeights struct {
	MA       float64 `yaml:"ma" json:"ma"`
	ADX      float64 `yaml:"adx" json:"adx"`
	Momentum float64 `yaml:"momentum" json:"momentum"`
	Position float64 `yaml:"position" json:"position"`
}

// Signals configures the last-bar signal detectors.
type Signals struct {
	MACrossover MACrossover `yaml:"ma_crossover" json:"ma_crossover"`
	VolumeSurge VolumeSurge `yaml:"volume_surge" json:"volume_surge"`
	Breakout    Breakout    `yaml:"breakout" json:"breakout"`
	RSI         RSISignal   `yaml:"rsi" json:"rsi"`
}

type MACrossover struct {
	Enabled       bool    `yaml:"enabled" json:"enabled"`
	ShortPeriod   int     `yaml:"short_period" json:"short_period"`
	LongPeriod    int     `yaml:"long_period" json:"long_period"`
	VolumeConfirm bool    `yaml:"volume_confirm" json:"volume_confirm"`
	Weight        float64 `yaml:"weight" json:"weight"`
}

type VolumeSurge struct {
	Enabled         bool    `yaml:"enabled" json:"enabled"`
	SurgeMultiplier float64 `yaml:"surge_multiplier" json:"surge_multiplier"`
	MinPriceChange  float64 `yaml:"min_price_change" json:"min_price_change"` // percent
	Weight          float64 `yaml:"weight" json:"weight"`
}

type Breakout struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	Lookback       int     `yaml:"lookback" json:"lookback"`
	VolumeConfirm  bool    `yaml:"volume_confirm" json:"volume_confirm"`
	MinVolumeRatio float64 `yaml:"min_volume_ratio" json:"min_volume_ratio"`
	Weight         float64 `yaml:"weight" json:"weight"`
}

type RSISignal struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	Mode             string  `yaml:"mode" json:"mode"` // oversold | overbought | both
	Oversold         float64 `yaml:"oversold" json:"oversold"`
	Overbought       float64 `yaml:"overbought" json:"overbought"`
	OversoldWeight   float64 `yaml:"oversold_weight" json:"oversold_weight"`
	OverboughtWeight float64 `yaml:"overbought_weight" json:"overbought_weight"`
}

// Indicators holds the indicator engine periods.
type Indicators struct {
	MAPeriods    []int     `yaml:"ma_periods" json:"ma_periods"`
	RSIPeriod    int       `yaml:"rsi_period" json:"rsi_period"`
	MACD         MACD      `yaml:"macd" json:"macd"`
	Bollinger    Bollinger `yaml:"bollinger" json:"bollinger"`
	ATRPeriod    int       `yaml:"atr_period" json:"atr_period"`
	ADXPeriod    int       `yaml:"adx_period" json:"adx_period"`
	VolumePeriod int       `yaml:"volume_period" json:"volume_period"`
	RangePeriod  int       `yaml:"range_period" json:"range_period"`
}

type MACD struct {
	Fast   int `yaml:"fast" json:"fast"`
	Slow   int `yaml:"slow" json:"slow"`
	Signal int `yaml:"signal" json:"signal"`
}

type Bollinger struct {
	Period int     `yaml:"period" json:"period"`
	StdDev float64 `yaml:"std_dev" json:"std_dev"`
}

// Scoring configures the composite ranking.
type Scoring struct {
	Weights ScoringWeights `yaml:"weights" json:"weights"`
	TopN    int            `yaml:"top_n" json:"top_n"`
}

// ScoringWeights are the composite weights.
type ScoringWeights struct {
	Liquidity float64 `yaml:"liquidity" json:"liquidity"`
	Trend     float64 `yaml:"trend" json:"trend"`
	Signal    float64 `yaml:"signal" json:"signal"`
}

// Sum returns the sum of all weights
func (w ScoringWeights) Sum() float64 {
	return w.Liquidity + w.Trend + w.Signal
}

// Default returns the built-in strategy.
func Default() *Config {
	return &Config{
		Meta: Meta{StrategyID: "trend_screen_default", Version: "1"},
		Liquidity: Liquidity{
			MinDollarVolume:       1_000_000,
			Window:                20,
			MinPrice:              5.0,
			ExcellentDollarVolume: 10_000_000,
		},
		DataQuality: DataQuality{
			MinSeriesLength: 100,
			MaxGapTolerance: 5,
		},
		Trend: Trend{
			MinADX:        20,
			MinSlope:      0.001,
			MAPeriod:      20,
			SlopeLookback: 5,
		},
		WeeklyTrend: WeeklyTrend{
			Enabled:            true,
			MAPeriod:           20,
			SlopeLookbackWeeks: 4,
			SidewaysThreshold:  0.005,
			RequireAlignment:   true,
			DailyMAPeriod:      20,
			DailyLookback:      4,
		},
		TrendScorer: TrendScorer{
			Name:      "ma_adx",
			MAPeriods: []int{5, 10, 20, 50},
			StrongADX: 25,
			Weights:   TrendScorerWeights{MA: 0.5, ADX: 0.5, Momentum: 0.5, Position: 0.5},
		},
		Signals: Signals{
			MACrossover: MACrossover{Enabled: true, ShortPeriod: 20, LongPeriod: 50, VolumeConfirm: true, Weight: 30},
			VolumeSurge: VolumeSurge{Enabled: true, SurgeMultiplier: 2.0, MinPriceChange: 2.0, Weight: 25},
			Breakout:    Breakout{Enabled: true, Lookback: 20, VolumeConfirm: true, MinVolumeRatio: 1.2, Weight: 35},
			RSI: RSISignal{
				Enabled: true, Mode: "oversold",
				Oversold: 30, Overbought: 70,
				OversoldWeight: 20, OverboughtWeight: 10,
			},
		},
		Indicators: Indicators{
			MAPeriods:    []int{5, 10, 20, 50, 200},
			RSIPeriod:    14,
			MACD:         MACD{Fast: 12, Slow: 26, Signal: 9},
			Bollinger:    Bollinger{Period: 20, StdDev: 2.0},
			ATRPeriod:    14,
			ADXPeriod:    14,
			VolumePeriod: 20,
			RangePeriod:  20,
		},
		Scoring: Scoring{
			Weights: ScoringWeights{Liquidity: 0.2, Trend: 0.4, Signal: 0.4},
			TopN:    20,
		},
	}
}

// IndicatorConfig returns the engine config covering every period any
// component reads.
func (c *Config) IndicatorConfig() indicator.Config {
	ic := indicator.Config{
		MAPeriods:       c.Indicators.MAPeriods,
		RSIPeriod:       c.Indicators.RSIPeriod,
		MACDFast:        c.Indicators.MACD.Fast,
		MACDSlow:        c.Indicators.MACD.Slow,
		MACDSignal:      c.Indicators.MACD.Signal,
		BollingerPeriod: c.Indicators.Bollinger.Period,
		BollingerStdDev: c.Indicators.Bollinger.StdDev,
		ATRPeriod:       c.Indicators.ATRPeriod,
		ADXPeriod:       c.Indicators.ADXPeriod,
		VolumePeriod:    c.Indicators.VolumePeriod,
		RangePeriod:     c.Indicators.RangePeriod,
	}

	extra := []int{
		c.Trend.MAPeriod,
		c.WeeklyTrend.MAPeriod,
		c.WeeklyTrend.DailyMAPeriod,
		c.Signals.MACrossover.ShortPeriod,
		c.Signals.MACrossover.LongPeriod,
	}
	extra = append(extra, c.TrendScorer.MAPeriods...)

	return ic.WithMAPeriods(extra...)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.TrendScorer.MAPeriods = append([]int(nil), c.TrendScorer.MAPeriods...)
	out.Indicators.MAPeriods = append([]int(nil), c.Indicators.MAPeriods...)
	return &out
}
