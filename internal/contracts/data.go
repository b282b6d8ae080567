package contracts

import (
	"math"
	"sort"
	"time"
)

// Timeframe is the bar period of a series.
type Timeframe string

const (
	Daily   Timeframe = "daily"
	Weekly  Timeframe = "weekly"
	Monthly Timeframe = "monthly"
)

// AllTimeframes returns every supported timeframe, finest first.
func AllTimeframes() []Timeframe {
	return []Timeframe{Daily, Weekly, Monthly}
}

// Valid reports whether tf is a supported timeframe.
func (tf Timeframe) Valid() bool {
	switch tf {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// Bar is one OHLCV record. Volume is NaN when the provider had no value.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// HasVolume reports whether the bar carries a usable volume figure.
func (b Bar) HasVolume() bool {
	return !math.IsNaN(b.Volume) && !math.IsInf(b.Volume, 0)
}

// DollarVolume returns close × volume.
func (b Bar) DollarVolume() float64 {
	return b.Close * b.Volume
}

// Series is an ascending-by-date sequence of bars for one (ticker, timeframe).
// The core treats it as read-only.
type Series []Bar

// Last returns the final bar and false for an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Tail returns the last n bars (or all of them when shorter).
func (s Series) Tail(n int) Series {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Closes extracts the close prices.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// TickerData holds every timeframe supplied for one ticker.
type TickerData map[Timeframe]Series

// MarketData maps ticker symbol to its series, as handed over by a provider.
type MarketData map[string]TickerData

// Tickers returns the symbols in ascending order.
func (m MarketData) Tickers() []string {
	out := make([]string, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
