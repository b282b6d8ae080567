package contracts

// TrendLabel classifies the direction of a moving average.
type TrendLabel string

const (
	TrendUp       TrendLabel = "up"
	TrendDown     TrendLabel = "down"
	TrendSideways TrendLabel = "sideways"
	TrendUnknown  TrendLabel = "unknown"
)

// Directional reports whether the label is up or down.
func (l TrendLabel) Directional() bool {
	return l == TrendUp || l == TrendDown
}

// TrendState is the weekly/daily alignment picture of one ticker for one run.
// Slope and MA are nil when the series was too short to compute them.
type TrendState struct {
	Ticker          string     `json:"ticker"`
	WeeklyMA        *float64   `json:"weekly_ma"`
	WeeklySlope     *float64   `json:"weekly_slope"`
	WeeklyTrend     TrendLabel `json:"weekly_trend"`
	DailySlope      *float64   `json:"daily_slope"`
	DailyTrend      TrendLabel `json:"daily_trend"`
	Aligned         bool       `json:"aligned"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// Conflicting reports whether daily and weekly point in opposite directions.
func (s TrendState) Conflicting() bool {
	return s.DailyTrend.Directional() && s.WeeklyTrend.Directional() && s.DailyTrend != s.WeeklyTrend
}

// TrendStats aggregates alignment outcomes across a run.
type TrendStats struct {
	Aligned     int `json:"aligned"`
	Conflicting int `json:"conflicting"`
	Sideways    int `json:"sideways"`
	Unknown     int `json:"unknown"`
}

// Add counts one state. Every state lands in exactly one bucket: either
// side unknown counts as unknown, mixed non-conflicting pairs (one side
// sideways) count as sideways.
func (s *TrendStats) Add(state TrendState) {
	switch {
	case state.WeeklyTrend == TrendUnknown, state.DailyTrend == TrendUnknown:
		s.Unknown++
	case state.Conflicting():
		s.Conflicting++
	case state.DailyTrend == state.WeeklyTrend:
		s.Aligned++
	default:
		s.Sideways++
	}
}

// Total returns the number of counted states.
func (s TrendStats) Total() int {
	return s.Aligned + s.Conflicting + s.Sideways + s.Unknown
}

// TrendScore is the output of a trend scoring strategy.
type TrendScore struct {
	Scorer    string             `json:"scorer"`
	Total     float64            `json:"total"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// Signal is one event detected on the last bar of a ticker's daily series.
type Signal struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}
