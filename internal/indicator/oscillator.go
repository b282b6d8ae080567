package indicator

// RSI is the relative strength index over a simple rolling average of
// gains and losses. A window with no movement reads 50; one with no
// losses reads 100.
func RSI(closes []float64, period int) Line {
	out := make(Line, len(closes))
	if period < 1 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	for i := period; i < len(closes); i++ {
		g, l := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			g += gains[j]
			l += losses[j]
		}
		switch {
		case l == 0 && g == 0:
			out[i] = Of(50)
		case l == 0:
			out[i] = Of(100)
		default:
			out[i] = Of(100 - 100/(1+g/l))
		}
	}
	return out
}

// MACDLines holds the three MACD outputs.
type MACDLines struct {
	Line      Line
	Signal    Line
	Histogram Line
}

// MACD computes EMA(fast) − EMA(slow), its signal EMA and the histogram.
func MACD(closes []float64, fast, slow, signal int) MACDLines {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	line := make(Line, len(closes))
	for i := range closes {
		f, ok1 := fastEMA[i].Get()
		s, ok2 := slowEMA[i].Get()
		if ok1 && ok2 {
			line[i] = Of(f - s)
		}
	}

	sig := emaLine(line, signal, 2.0/float64(signal+1))

	hist := make(Line, len(closes))
	for i := range closes {
		m, ok1 := line[i].Get()
		s, ok2 := sig[i].Get()
		if ok1 && ok2 {
			hist[i] = Of(m - s)
		}
	}

	return MACDLines{Line: line, Signal: sig, Histogram: hist}
}

// BollingerBands holds middle ± k·σ.
type BollingerBands struct {
	Middle Line
	Upper  Line
	Lower  Line
}

// Bollinger computes bands from the SMA and the sample standard deviation.
func Bollinger(closes []float64, period int, k float64) BollingerBands {
	in := lineOf(closes)
	mid := smaLine(in, period)
	std := rollingStd(in, period)

	upper := make(Line, len(closes))
	lower := make(Line, len(closes))
	for i := range closes {
		m, ok1 := mid[i].Get()
		s, ok2 := std[i].Get()
		if ok1 && ok2 {
			upper[i] = Of(m + k*s)
			lower[i] = Of(m - k*s)
		}
	}

	return BollingerBands{Middle: mid, Upper: upper, Lower: lower}
}
