package indicator

import (
	"sort"

	"github.com/wonny/trendscreen/internal/contracts"
)

// Config lists the indicator periods to compute.
type Config struct {
	MAPeriods       []int
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerStdDev float64
	ATRPeriod       int
	ADXPeriod       int
	VolumePeriod    int
	RangePeriod     int
}

// DefaultConfig returns the standard periods.
func DefaultConfig() Config {
	return Config{
		MAPeriods:       []int{5, 10, 20, 50, 200},
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2.0,
		ATRPeriod:       14,
		ADXPeriod:       14,
		VolumePeriod:    20,
		RangePeriod:     20,
	}
}

// WithMAPeriods returns a copy whose MA periods also include extra,
// deduplicated and sorted ascending.
func (c Config) WithMAPeriods(extra ...int) Config {
	seen := make(map[int]bool)
	var periods []int
	for _, p := range append(append([]int{}, c.MAPeriods...), extra...) {
		if p < 1 || seen[p] {
			continue
		}
		seen[p] = true
		periods = append(periods, p)
	}
	sort.Ints(periods)
	c.MAPeriods = periods
	return c
}

// Frame is a series with every configured indicator, index-aligned with
// Bars. Frames are built once and never patched; recompute on new data.
type Frame struct {
	Bars contracts.Series

	SMA map[int]Line
	EMA map[int]Line

	RSI         Line
	MACD        MACDLines
	Bollinger   BollingerBands
	ATR         Line
	Directional DirectionalLines
	VolumeMA    Line
	VolumeRatio Line
	Change1D    Line // percent
	Change5D    Line // percent
	RangeHigh   Line // highest high of the trailing range window
	RangeLow    Line // lowest low of the trailing range window
}

// Compute derives every indicator of cfg for bars. Values at index i use
// only bars[0..i].
func Compute(bars contracts.Series, cfg Config) *Frame {
	closes := bars.Closes()
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	f := &Frame{
		Bars: bars,
		SMA:  make(map[int]Line, len(cfg.MAPeriods)),
		EMA:  make(map[int]Line, len(cfg.MAPeriods)),
	}

	for _, p := range cfg.MAPeriods {
		f.SMA[p] = SMA(closes, p)
		f.EMA[p] = EMA(closes, p)
	}

	f.RSI = RSI(closes, cfg.RSIPeriod)
	f.MACD = MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	f.Bollinger = Bollinger(closes, cfg.BollingerPeriod, cfg.BollingerStdDev)
	f.ATR = ATR(bars, cfg.ATRPeriod)
	f.Directional = ADX(bars, cfg.ADXPeriod)
	f.VolumeMA, f.VolumeRatio = VolumeRatio(bars, cfg.VolumePeriod)
	f.Change1D = PercentChange(closes, 1)
	f.Change5D = PercentChange(closes, 5)
	f.RangeHigh = RollingMax(highs, cfg.RangePeriod)
	f.RangeLow = RollingMin(lows, cfg.RangePeriod)

	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Bars)
}

// MA returns the SMA line of period; unknown periods give an all-unavailable line.
func (f *Frame) MA(period int) Line {
	if f == nil {
		return nil
	}
	if l, ok := f.SMA[period]; ok {
		return l
	}
	return make(Line, f.Len())
}

// Close returns the close at i.
func (f *Frame) Close(i int) Value {
	if i < 0 || i >= f.Len() {
		return Value{}
	}
	return Of(f.Bars[i].Close)
}

// LastClose returns the latest close.
func (f *Frame) LastClose() Value {
	return f.Close(f.Len() - 1)
}

// Snapshot is one row of a Frame.
type Snapshot struct {
	Close       Value         `json:"close"`
	SMA         map[int]Value `json:"sma"`
	RSI         Value         `json:"rsi"`
	MACD        Value         `json:"macd"`
	MACDSignal  Value         `json:"macd_signal"`
	MACDHist    Value         `json:"macd_hist"`
	BBUpper     Value         `json:"bb_upper"`
	BBMiddle    Value         `json:"bb_middle"`
	BBLower     Value         `json:"bb_lower"`
	ATR         Value         `json:"atr"`
	ADX         Value         `json:"adx"`
	PlusDI      Value         `json:"plus_di"`
	MinusDI     Value         `json:"minus_di"`
	VolumeRatio Value         `json:"volume_ratio"`
	Change1D    Value         `json:"change_1d"`
	Change5D    Value         `json:"change_5d"`
}

// At returns the snapshot of row i.
func (f *Frame) At(i int) Snapshot {
	s := Snapshot{
		Close:       f.Close(i),
		SMA:         make(map[int]Value, len(f.SMA)),
		RSI:         f.RSI.At(i),
		MACD:        f.MACD.Line.At(i),
		MACDSignal:  f.MACD.Signal.At(i),
		MACDHist:    f.MACD.Histogram.At(i),
		BBUpper:     f.Bollinger.Upper.At(i),
		BBMiddle:    f.Bollinger.Middle.At(i),
		BBLower:     f.Bollinger.Lower.At(i),
		ATR:         f.ATR.At(i),
		ADX:         f.Directional.ADX.At(i),
		PlusDI:      f.Directional.PlusDI.At(i),
		MinusDI:     f.Directional.MinusDI.At(i),
		VolumeRatio: f.VolumeRatio.At(i),
		Change1D:    f.Change1D.At(i),
		Change5D:    f.Change5D.At(i),
	}
	for p, l := range f.SMA {
		s.SMA[p] = l.At(i)
	}
	return s
}

// Last returns the snapshot of the final row.
func (f *Frame) Last() Snapshot {
	return f.At(f.Len() - 1)
}

// Augmented is one ticker with a Frame per supplied timeframe.
type Augmented struct {
	Ticker string
	Raw    contracts.TickerData
	Frames map[contracts.Timeframe]*Frame
}

// Augment computes frames for every timeframe present in data.
func Augment(ticker string, data contracts.TickerData, cfg Config) *Augmented {
	a := &Augmented{
		Ticker: ticker,
		Raw:    data,
		Frames: make(map[contracts.Timeframe]*Frame, len(data)),
	}
	for tf, series := range data {
		a.Frames[tf] = Compute(series, cfg)
	}
	return a
}

// Frame returns the frame of tf, or nil when that timeframe was not supplied.
func (a *Augmented) Frame(tf contracts.Timeframe) *Frame {
	return a.Frames[tf]
}

// Daily is shorthand for Frame(contracts.Daily).
func (a *Augmented) Daily() *Frame {
	return a.Frames[contracts.Daily]
}

// Weekly is shorthand for Frame(contracts.Weekly).
func (a *Augmented) Weekly() *Frame {
	return a.Frames[contracts.Weekly]
}
