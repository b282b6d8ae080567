package indicator

import "math"

// SMA is the simple moving average of xs over period. Rows before
// period-1 are unavailable.
func SMA(xs []float64, period int) Line {
	return smaLine(lineOf(xs), period)
}

// EMA is the exponential moving average with alpha 2/(period+1), seeded
// with the simple average of the first period values.
func EMA(xs []float64, period int) Line {
	return emaLine(lineOf(xs), period, 2.0/float64(period+1))
}

// smaLine averages the trailing window; any unavailable value in the
// window makes the output unavailable.
func smaLine(in Line, period int) Line {
	out := make(Line, len(in))
	if period < 1 {
		return out
	}

	sum := 0.0
	run := 0 // consecutive available values ending at i
	for i, v := range in {
		if !v.ok {
			sum, run = 0, 0
			continue
		}
		sum += v.v
		run++
		if run > period {
			sum -= in[i-period].v
			run = period
		}
		if run == period {
			out[i] = Of(sum / float64(period))
		}
	}
	return out
}

// emaLine applies recursive smoothing with the given alpha. Each
// contiguous run of available input is seeded afresh with its first
// period-value mean.
func emaLine(in Line, period int, alpha float64) Line {
	out := make(Line, len(in))
	if period < 1 {
		return out
	}

	var prev, seed float64
	run := 0
	for i, v := range in {
		if !v.ok {
			run, seed = 0, 0
			continue
		}
		run++
		switch {
		case run < period:
			seed += v.v
		case run == period:
			seed += v.v
			prev = seed / float64(period)
			out[i] = Of(prev)
		default:
			prev = alpha*v.v + (1-alpha)*prev
			out[i] = Of(prev)
		}
	}
	return out
}

// wilderLine is emaLine with Wilder's alpha of 1/period.
func wilderLine(in Line, period int) Line {
	return emaLine(in, period, 1.0/float64(period))
}

// rollingStd is the sample standard deviation over the trailing window.
func rollingStd(in Line, period int) Line {
	out := make(Line, len(in))
	if period < 2 {
		return out
	}

	mean := smaLine(in, period)
	for i := range in {
		m, ok := mean[i].Get()
		if !ok {
			continue
		}
		ss := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := in[j].v - m
			ss += d * d
		}
		out[i] = Of(math.Sqrt(ss / float64(period-1)))
	}
	return out
}

// RollingMax is the highest value of the trailing window ending at i.
func RollingMax(xs []float64, period int) Line {
	return rollingExtreme(xs, period, math.Max)
}

// RollingMin is the lowest value of the trailing window ending at i.
func RollingMin(xs []float64, period int) Line {
	return rollingExtreme(xs, period, math.Min)
}

func rollingExtreme(xs []float64, period int, pick func(a, b float64) float64) Line {
	out := make(Line, len(xs))
	if period < 1 {
		return out
	}
	for i := period - 1; i < len(xs); i++ {
		ext := xs[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			ext = pick(ext, xs[j])
		}
		out[i] = Of(ext)
	}
	return out
}

// PercentChange is 100 × (x[i] − x[i−n]) / x[i−n].
func PercentChange(xs []float64, n int) Line {
	out := make(Line, len(xs))
	if n < 1 {
		return out
	}
	for i := n; i < len(xs); i++ {
		base := xs[i-n]
		if base == 0 {
			continue
		}
		out[i] = Of(100 * (xs[i] - base) / base)
	}
	return out
}

// Slope is the fractional change of a line between the last value and the
// value lookback bars earlier. A zero base gives a flat slope of 0.
func Slope(l Line, lookback int) Value {
	if lookback < 1 {
		return Value{}
	}
	now, ok := l.Last().Get()
	if !ok {
		return Value{}
	}
	before, ok := l.Back(lookback).Get()
	if !ok {
		return Value{}
	}
	if before == 0 {
		return Of(0)
	}
	return Of((now - before) / before)
}
