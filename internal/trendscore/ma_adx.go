package trendscore

import (
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// MA+ADX scorer identity and breakdown keys.
const (
	MAADXName    = "ma_adx"
	MAADXVersion = "1.0.0"

	KeyMAAlignment = "ma_alignment"
	KeyADXStrength = "adx_strength"
)

// MAADX scores the bullish moving-average stack together with trend
// strength from ADX.
type MAADX struct {
	periods   []int
	strongADX float64
	wMA, wADX float64
}

// NewMAADX creates the moving-average + directional-index scorer
func NewMAADX(cfg strategyconfig.TrendScorer) *MAADX {
	return &MAADX{
		periods:   append([]int(nil), cfg.MAPeriods...),
		strongADX: cfg.StrongADX,
		wMA:       cfg.Weights.MA,
		wADX:      cfg.Weights.ADX,
	}
}

// Name implements Scorer.
func (s *MAADX) Name() string { return MAADXName }

// Version implements Scorer.
func (s *MAADX) Version() string { return MAADXVersion }

// Score implements Scorer.
func (s *MAADX) Score(f *indicator.Frame) contracts.TrendScore {
	ma, adx := neutral, neutral
	if f.Len() > 0 {
		ma = s.alignment(f)
		adx = s.strength(f)
	}

	return contracts.TrendScore{
		Scorer: MAADXName,
		Total:  weighted(ma, s.wMA, adx, s.wADX),
		Breakdown: map[string]float64{
			KeyMAAlignment: round2(ma),
			KeyADXStrength: round2(adx),
		},
	}
}

// alignment checks price > MA1 > MA2 > ... over the ascending periods and
// scores the share of pairs that hold. A pair with an unavailable side is
// left out; with no pair left the score is neutral.
func (s *MAADX) alignment(f *indicator.Frame) float64 {
	prev := f.LastClose()
	evaluated, satisfied := 0, 0
	for _, p := range s.periods {
		cur := f.MA(p).Last()
		hi, okHi := prev.Get()
		lo, okLo := cur.Get()
		if okHi && okLo {
			evaluated++
			if hi > lo {
				satisfied++
			}
		}
		prev = cur
	}

	if evaluated == 0 {
		return neutral
	}
	return 100 * float64(satisfied) / float64(evaluated)
}

// strength maps how far ADX exceeds the strong threshold onto [0, 100]:
// 0 at or below the threshold, 100 at twice the threshold and above.
func (s *MAADX) strength(f *indicator.Frame) float64 {
	adx, ok := f.Directional.ADX.Last().Get()
	if !ok || s.strongADX <= 0 {
		return neutral
	}
	return clamp(100*(adx-s.strongADX)/s.strongADX, 0, 100)
}
