// Package signal detects last-bar events on the daily frame and turns them
// into the signal sub-score.
package signal

import (
	"fmt"
	"math"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// Signal types.
const (
	TypeMACrossover   = "ma_crossover"
	TypeVolumeSurge   = "volume_surge"
	TypeBreakout      = "breakout"
	TypeRSIRebound    = "rsi_rebound"
	TypeRSIOverbought = "rsi_overbought"
)

// Detector runs every enabled rule against the latest bar. A rule whose
// inputs are unavailable does not fire.
type Detector struct {
	cfg strategyconfig.Signals
}

// NewDetector creates a signal detector
func NewDetector(cfg strategyconfig.Signals) *Detector {
	return &Detector{cfg: cfg}
}

// Detect returns the signals firing on the last bar of f, in a fixed order.
func (d *Detector) Detect(f *indicator.Frame) []contracts.Signal {
	signals := make([]contracts.Signal, 0)
	if f.Len() < 2 {
		return signals
	}

	if d.cfg.MACrossover.Enabled {
		if s, ok := d.maCrossover(f); ok {
			signals = append(signals, s)
		}
	}
	if d.cfg.VolumeSurge.Enabled {
		if s, ok := d.volumeSurge(f); ok {
			signals = append(signals, s)
		}
	}
	if d.cfg.Breakout.Enabled {
		if s, ok := d.breakout(f); ok {
			signals = append(signals, s)
		}
	}
	if d.cfg.RSI.Enabled {
		signals = append(signals, d.rsi(f)...)
	}

	return signals
}

// maCrossover fires when the short SMA crosses above the long SMA.
func (d *Detector) maCrossover(f *indicator.Frame) (contracts.Signal, bool) {
	c := d.cfg.MACrossover
	short, long := f.MA(c.ShortPeriod), f.MA(c.LongPeriod)

	sNow, ok1 := short.Last().Get()
	lNow, ok2 := long.Last().Get()
	sPrev, ok3 := short.Back(1).Get()
	lPrev, ok4 := long.Back(1).Get()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return contracts.Signal{}, false
	}
	if !(sPrev <= lPrev && sNow > lNow) {
		return contracts.Signal{}, false
	}

	if c.VolumeConfirm {
		ratio, ok := f.VolumeRatio.Last().Get()
		if !ok || ratio < 1.0 {
			return contracts.Signal{}, false
		}
	}

	return contracts.Signal{
		Type:        TypeMACrossover,
		Description: fmt.Sprintf("sma%d %.2f crossed above sma%d %.2f", c.ShortPeriod, sNow, c.LongPeriod, lNow),
		Weight:      c.Weight,
	}, true
}

// volumeSurge fires on a volume spike with a rising close.
func (d *Detector) volumeSurge(f *indicator.Frame) (contracts.Signal, bool) {
	c := d.cfg.VolumeSurge

	ratio, ok1 := f.VolumeRatio.Last().Get()
	change, ok2 := f.Change1D.Last().Get()
	if !ok1 || !ok2 {
		return contracts.Signal{}, false
	}
	if ratio < c.SurgeMultiplier || change < c.MinPriceChange {
		return contracts.Signal{}, false
	}

	return contracts.Signal{
		Type:        TypeVolumeSurge,
		Description: fmt.Sprintf("volume %.2fx average, close %+.2f%%", ratio, change),
		Weight:      c.Weight,
	}, true
}

// breakout fires when the close exceeds the highest high of the previous
// lookback bars, today excluded.
func (d *Detector) breakout(f *indicator.Frame) (contracts.Signal, bool) {
	c := d.cfg.Breakout
	n := f.Len()
	if n < c.Lookback+1 {
		return contracts.Signal{}, false
	}

	recentHigh := math.Inf(-1)
	for _, b := range f.Bars[n-1-c.Lookback : n-1] {
		recentHigh = math.Max(recentHigh, b.High)
	}
	last := f.Bars[n-1].Close
	if last <= recentHigh {
		return contracts.Signal{}, false
	}

	if c.VolumeConfirm {
		ratio, ok := f.VolumeRatio.Last().Get()
		if !ok || ratio < c.MinVolumeRatio {
			return contracts.Signal{}, false
		}
	}

	return contracts.Signal{
		Type:        TypeBreakout,
		Description: fmt.Sprintf("close %.2f above %d-bar high %.2f", last, c.Lookback, recentHigh),
		Weight:      c.Weight,
	}, true
}

// rsi fires on RSI crossing back inside its band.
func (d *Detector) rsi(f *indicator.Frame) []contracts.Signal {
	c := d.cfg.RSI
	now, ok1 := f.RSI.Last().Get()
	prev, ok2 := f.RSI.Back(1).Get()
	if !ok1 || !ok2 {
		return nil
	}

	var out []contracts.Signal
	if c.Mode == "oversold" || c.Mode == "both" {
		if prev <= c.Oversold && now > c.Oversold {
			out = append(out, contracts.Signal{
				Type:        TypeRSIRebound,
				Description: fmt.Sprintf("rsi %.2f -> %.2f crossed up through %.0f", prev, now, c.Oversold),
				Weight:      c.OversoldWeight,
			})
		}
	}
	if c.Mode == "overbought" || c.Mode == "both" {
		if prev >= c.Overbought && now < c.Overbought {
			out = append(out, contracts.Signal{
				Type:        TypeRSIOverbought,
				Description: fmt.Sprintf("rsi %.2f -> %.2f crossed down through %.0f", prev, now, c.Overbought),
				Weight:      c.OverboughtWeight,
			})
		}
	}
	return out
}

// Score maps fired signals onto [0, 100]: nothing fired is 0, any signal
// starts at 50 and the summed weights add at most another 50.
func Score(signals []contracts.Signal) float64 {
	if len(signals) == 0 {
		return 0
	}
	bonus := 0.0
	for _, s := range signals {
		bonus += s.Weight
	}
	return math.Min(100, 50+math.Min(50, bonus))
}

// Types lists the signal types in order.
func Types(signals []contracts.Signal) []string {
	types := make([]string, len(signals))
	for i, s := range signals {
		types[i] = s.Type
	}
	return types
}
