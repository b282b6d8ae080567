package provider

import (
	"math"

	"github.com/wonny/trendscreen/internal/contracts"
)

// Resample aggregates a daily series into weekly (ISO week) or monthly bars.
// Each bar is dated at the last daily bar of its bucket. Volume is missing
// when any daily bar in the bucket lacks it. Daily input is returned as is.
func Resample(daily contracts.Series, tf contracts.Timeframe) contracts.Series {
	if tf == contracts.Daily || len(daily) == 0 {
		return daily
	}

	out := make(contracts.Series, 0, len(daily)/4+1)
	var cur contracts.Bar
	curKey := -1

	for _, b := range daily {
		key := bucket(b, tf)
		if key != curKey {
			if curKey >= 0 {
				out = append(out, cur)
			}
			cur = b
			curKey = key
			continue
		}

		cur.Date = b.Date
		cur.High = math.Max(cur.High, b.High)
		cur.Low = math.Min(cur.Low, b.Low)
		cur.Close = b.Close
		if cur.HasVolume() && b.HasVolume() {
			cur.Volume += b.Volume
		} else {
			cur.Volume = math.NaN()
		}
	}
	return append(out, cur)
}

func bucket(b contracts.Bar, tf contracts.Timeframe) int {
	if tf == contracts.Monthly {
		return b.Date.Year()*100 + int(b.Date.Month())
	}
	year, week := b.Date.ISOWeek()
	return year*100 + week
}
