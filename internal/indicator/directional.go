package indicator

import (
	"math"

	"github.com/wonny/trendscreen/internal/contracts"
)

// TrueRange per bar. The first bar has no previous close and uses high − low.
func TrueRange(bars contracts.Series) []float64 {
	tr := make([]float64, len(bars))
	for i, b := range bars {
		hl := b.High - b.Low
		if i == 0 {
			tr[i] = hl
			continue
		}
		pc := bars[i-1].Close
		tr[i] = math.Max(hl, math.Max(math.Abs(b.High-pc), math.Abs(b.Low-pc)))
	}
	return tr
}

// ATR is the rolling mean of the true range.
func ATR(bars contracts.Series, period int) Line {
	return smaLine(lineOf(TrueRange(bars)), period)
}

// DirectionalLines holds ADX with its directional indicators.
type DirectionalLines struct {
	ADX     Line
	PlusDI  Line
	MinusDI Line
}

// ADX computes the average directional index with Wilder smoothing.
//
// +DM / −DM and TR start at bar 1. Their Wilder averages seed at bar
// period, giving ±DI and DX from there; ADX is the Wilder average of DX
// and first reads at bar 2·period−1. A zero DI sum gives DX = 0.
func ADX(bars contracts.Series, period int) DirectionalLines {
	n := len(bars)
	out := DirectionalLines{
		ADX:     make(Line, n),
		PlusDI:  make(Line, n),
		MinusDI: make(Line, n),
	}
	if period < 1 || n < 2 {
		return out
	}

	plusDM := make(Line, n)
	minusDM := make(Line, n)
	tr := make(Line, n)
	for i := 1; i < n; i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low

		p, m := 0.0, 0.0
		if up > down && up > 0 {
			p = up
		}
		if down > up && down > 0 {
			m = down
		}
		plusDM[i] = Of(p)
		minusDM[i] = Of(m)

		pc := bars[i-1].Close
		tr[i] = Of(math.Max(bars[i].High-bars[i].Low,
			math.Max(math.Abs(bars[i].High-pc), math.Abs(bars[i].Low-pc))))
	}

	sPlus := wilderLine(plusDM, period)
	sMinus := wilderLine(minusDM, period)
	sTR := wilderLine(tr, period)

	dx := make(Line, n)
	for i := range bars {
		t, ok := sTR[i].Get()
		if !ok {
			continue
		}
		p, _ := sPlus[i].Get()
		m, _ := sMinus[i].Get()

		pdi, mdi := 0.0, 0.0
		if t != 0 {
			pdi = 100 * p / t
			mdi = 100 * m / t
		}
		out.PlusDI[i] = Of(pdi)
		out.MinusDI[i] = Of(mdi)

		if sum := pdi + mdi; sum != 0 {
			dx[i] = Of(100 * math.Abs(pdi-mdi) / sum)
		} else {
			dx[i] = Of(0)
		}
	}

	out.ADX = wilderLine(dx, period)
	return out
}

// VolumeRatio is volume divided by its trailing average. Bars with missing
// volume break the window.
func VolumeRatio(bars contracts.Series, period int) (ma Line, ratio Line) {
	vol := make(Line, len(bars))
	for i, b := range bars {
		if b.HasVolume() {
			vol[i] = Of(b.Volume)
		}
	}

	ma = smaLine(vol, period)
	ratio = make(Line, len(bars))
	for i := range bars {
		avg, ok := ma[i].Get()
		if !ok || avg <= 0 || !vol[i].ok {
			continue
		}
		ratio[i] = Of(vol[i].v / avg)
	}
	return ma, ratio
}
