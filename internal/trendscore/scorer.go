// Package trendscore holds the interchangeable trend scoring strategies.
package trendscore

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// ErrUnknownScorer is returned by New for an unregistered name.
var ErrUnknownScorer = errors.New("unknown trend scorer")

// neutral is the sub-score used when an input indicator is unavailable.
const neutral = 50.0

// Scorer rates the trend of one daily frame on [0, 100]. Implementations
// must not fail on short history; unavailable inputs score neutral.
type Scorer interface {
	Name() string
	Version() string
	Score(f *indicator.Frame) contracts.TrendScore
}

// Factory builds a scorer from its config section.
type Factory func(cfg strategyconfig.TrendScorer) Scorer

var registry = map[string]Factory{
	MAADXName:    func(cfg strategyconfig.TrendScorer) Scorer { return NewMAADX(cfg) },
	MomentumName: func(cfg strategyconfig.TrendScorer) Scorer { return NewMomentum(cfg) },
}

// New selects the scorer named by cfg.Name.
func New(cfg strategyconfig.TrendScorer) (Scorer, error) {
	factory, ok := registry[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScorer, cfg.Name, Names())
	}
	return factory(cfg), nil
}

// Names lists the registered scorers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// weighted combines two sub-scores. Weights that do not sum to 1 are
// rescaled; an all-zero pair falls back to equal weights.
func weighted(a, wa, b, wb float64) float64 {
	sum := wa + wb
	if sum <= 0 {
		wa, wb, sum = 1, 1, 2
	}
	return round2(clamp((a*wa+b*wb)/sum, 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
