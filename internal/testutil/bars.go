// Package testutil builds synthetic OHLCV series for tests.
package testutil

import (
	"math"
	"time"

	"github.com/wonny/trendscreen/internal/contracts"
)

// Start is the first bar date used by the generators (a Monday).
var Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// TradingDays returns n weekdays starting at from.
func TradingDays(from time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := from
	for len(days) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return days
}

// Weeks returns n dates one week apart starting at from.
func Weeks(from time.Time, n int) []time.Time {
	days := make([]time.Time, n)
	for i := range days {
		days[i] = from.AddDate(0, 0, 7*i)
	}
	return days
}

// Linear returns n values start, start+step, ...
func Linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// Geometric returns n values compounding at rate per bar.
func Geometric(n int, start, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start * math.Pow(1+rate, float64(i))
	}
	return out
}

// Zigzag oscillates around mid with the given amplitude and period.
func Zigzag(n int, mid, amplitude float64, period int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mid + amplitude*math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return out
}

// Constant returns n copies of v.
func Constant(n int, v float64) []float64 {
	return Linear(n, v, 0)
}

// Bars builds a series on the given dates. Open is the previous close,
// high and low wrap open/close by 1%.
func Bars(dates []time.Time, closes []float64, volume float64) contracts.Series {
	s := make(contracts.Series, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		s[i] = contracts.Bar{
			Date:   dates[i],
			Open:   open,
			High:   math.Max(open, c) * 1.01,
			Low:    math.Min(open, c) * 0.99,
			Close:  c,
			Volume: volume,
		}
	}
	return s
}

// Daily builds a weekday series from closes with constant volume.
func Daily(closes []float64, volume float64) contracts.Series {
	return Bars(TradingDays(Start, len(closes)), closes, volume)
}

// WeeklySeries builds a weekly series from closes with constant volume.
func WeeklySeries(closes []float64, volume float64) contracts.Series {
	return Bars(Weeks(Start, len(closes)), closes, volume)
}

// Flat builds bars whose open, high, low and close are all v.
func Flat(n int, v, volume float64) contracts.Series {
	days := TradingDays(Start, n)
	s := make(contracts.Series, n)
	for i := range s {
		s[i] = contracts.Bar{Date: days[i], Open: v, High: v, Low: v, Close: v, Volume: volume}
	}
	return s
}
