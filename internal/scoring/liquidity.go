package scoring

import (
	"math"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/filter"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// LiquidityScore maps average dollar volume onto [0, 100]. At or above
// the excellent level scores 100, the floor scores 60 with linear
// interpolation between, and below the floor scales from 0 to 50. A series
// too short for the window scores a neutral 50.
func LiquidityScore(s contracts.Series, cfg strategyconfig.Liquidity) float64 {
	adv, ok := filter.AverageDollarVolume(s, cfg.Window)
	if !ok {
		return 50
	}
	return liquidityCurve(adv.InexactFloat64(), cfg.MinDollarVolume, cfg.ExcellentDollarVolume)
}

func liquidityCurve(adv, floor, excellent float64) float64 {
	var score float64
	switch {
	case adv >= excellent:
		score = 100
	case adv >= floor:
		score = 60 + 40*(adv-floor)/(excellent-floor)
	case floor > 0:
		score = 50 * adv / floor
	default:
		score = 100
	}
	return math.Round(math.Max(0, math.Min(100, score))*100) / 100
}
