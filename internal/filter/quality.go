package filter

import (
	"math"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/indicator"
	"github.com/wonny/trendscreen/internal/strategyconfig"
)

// DataQualityFilter rejects short, gappy or malformed series. Later gates
// assume its checks hold, so the chain runs it first.
type DataQualityFilter struct {
	cfg strategyconfig.DataQuality
}

// NewDataQualityFilter creates a data quality gate
func NewDataQualityFilter(cfg strategyconfig.DataQuality) *DataQualityFilter {
	return &DataQualityFilter{cfg: cfg}
}

// Name implements Filter.
func (f *DataQualityFilter) Name() string { return NameDataQuality }

// Evaluate implements Filter.
func (f *DataQualityFilter) Evaluate(a *indicator.Augmented) contracts.FilterResult {
	daily := a.Raw[contracts.Daily]
	if len(daily) == 0 {
		return reject(NameDataQuality, a.Ticker, contracts.ReasonInsufficientData, nil, "no daily series")
	}

	// Every supplied timeframe must be well formed, not only daily.
	for _, tf := range contracts.AllTimeframes() {
		series, ok := a.Raw[tf]
		if !ok {
			continue
		}
		if reason, detail := checkSeries(series); reason != "" {
			return reject(NameDataQuality, a.Ticker, reason, nil, "%s: %s", tf, detail)
		}
	}

	maxGap := maxGapDays(daily)
	measured := map[string]float64{
		"bars":         float64(len(daily)),
		"max_gap_days": float64(maxGap),
	}

	if len(daily) < f.cfg.MinSeriesLength {
		return reject(NameDataQuality, a.Ticker, contracts.ReasonInsufficientData, measured,
			"%d daily bars < %d", len(daily), f.cfg.MinSeriesLength)
	}
	if maxGap > f.cfg.MaxGapTolerance {
		return reject(NameDataQuality, a.Ticker, ReasonDataGap, measured,
			"%d calendar days between bars > %d", maxGap, f.cfg.MaxGapTolerance)
	}

	return pass(NameDataQuality, a.Ticker, measured)
}

// checkSeries returns the first structural defect of s.
func checkSeries(s contracts.Series) (reason, detail string) {
	for i, b := range s {
		if i > 0 {
			prev := s[i-1].Date
			switch {
			case b.Date.Equal(prev):
				return ReasonDuplicateDates, b.Date.Format("2006-01-02")
			case b.Date.Before(prev):
				return ReasonNonMonotonic, b.Date.Format("2006-01-02")
			}
		}

		for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
				return ReasonInvalidPrice, b.Date.Format("2006-01-02")
			}
		}
		if b.High < b.Low {
			return ReasonInvalidPrice, b.Date.Format("2006-01-02") + " high below low"
		}

		// NaN volume is missing, not malformed; liquidity handles it.
		if b.HasVolume() && b.Volume < 0 {
			return ReasonNegativeVolume, b.Date.Format("2006-01-02")
		}
	}
	return "", ""
}

// maxGapDays is the largest calendar-day distance between consecutive bars.
func maxGapDays(s contracts.Series) int {
	maxGap := 0
	for i := 1; i < len(s); i++ {
		gap := int(s[i].Date.Sub(s[i-1].Date).Hours() / 24)
		if gap > maxGap {
			maxGap = gap
		}
	}
	return maxGap
}
