package trendscore

import (
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// Momentum scorer identity and breakdown keys.
const (
	MomentumName    = "momentum"
	MomentumVersion = "1.0.0"

	KeyPriceMomentum = "price_momentum"
	KeyPricePosition = "price_position"
)

// Momentum scores the 5-day price change and where the close sits inside
// the trailing high/low range.
type Momentum struct {
	wMomentum, wPosition float64
}

// NewMomentum creates the momentum scorer
func NewMomentum(cfg strategyconfig.TrendScorer) *Momentum {
	return &Momentum{
		wMomentum: cfg.Weights.Momentum,
		wPosition: cfg.Weights.Position,
	}
}

// Name implements Scorer.
func (s *Momentum) Name() string { return MomentumName }

// Version implements Scorer.
func (s *Momentum) Version() string { return MomentumVersion }

// Score implements Scorer.
func (s *Momentum) Score(f *indicator.Frame) contracts.TrendScore {
	mom, pos := neutral, neutral
	if f.Len() > 0 {
		mom = momentumScore(f.Change5D.Last())
		pos = positionScore(f.LastClose(), f.RangeHigh.Last(), f.RangeLow.Last())
	}

	return contracts.TrendScore{
		Scorer: MomentumName,
		Total:  weighted(mom, s.wMomentum, pos, s.wPosition),
		Breakdown: map[string]float64{
			KeyPriceMomentum: mom,
			KeyPricePosition: pos,
		},
	}
}

// momentumScore buckets a percent change.
func momentumScore(change indicator.Value) float64 {
	pct, ok := change.Get()
	switch {
	case !ok:
		return neutral
	case pct >= 10:
		return 100
	case pct >= 5:
		return 70
	case pct >= 2:
		return 50
	case pct >= 0:
		return 30
	default:
		return 0
	}
}

// positionScore favours the upper-middle of the range over the extremes.
func positionScore(closeV, highV, lowV indicator.Value) float64 {
	c, ok1 := closeV.Get()
	hi, ok2 := highV.Get()
	lo, ok3 := lowV.Get()
	if !ok1 || !ok2 || !ok3 || hi == lo {
		return neutral
	}

	pos := (c - lo) / (hi - lo)
	switch {
	case pos >= 0.5 && pos <= 0.75:
		return 100
	case pos > 0.75 && pos <= 0.85:
		return 80
	case pos >= 0.3 && pos < 0.5:
		return 60
	case pos > 0.85:
		return 30
	default:
		return 20
	}
}
