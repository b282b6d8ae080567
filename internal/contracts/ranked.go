package contracts

import "time"

// Confidence labels how much a ranked ticker should be trusted.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ScoreRecord is one ranked ticker. CompositeScore is a pure function of
// the three sub-scores and the run weights.
type ScoreRecord struct {
	Ticker         string             `json:"ticker"`
	Rank           int                `json:"rank"` // 1-based
	LiquidityScore float64            `json:"liquidity_score"`
	TrendScore     float64            `json:"trend_score"`
	TrendBreakdown map[string]float64 `json:"trend_breakdown"`
	SignalScore    float64            `json:"signal_score"`
	CompositeScore float64            `json:"composite_score"`
	Signals        []string           `json:"signals,omitempty"`
	Confidence     Confidence         `json:"confidence"`
}

// IsTopRanked checks if the record is in the top n ranks
func (r *ScoreRecord) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}

// FilterResult is the decision of one filter for one ticker. Reason is set
// iff the ticker was rejected.
type FilterResult struct {
	Ticker   string             `json:"ticker"`
	Filter   string             `json:"filter"`
	Passed   bool               `json:"passed"`
	Reason   string             `json:"reason,omitempty"`
	Detail   string             `json:"detail,omitempty"`
	Measured map[string]float64 `json:"measured,omitempty"`
}

// Rejection reasons shared across filters.
const (
	ReasonInsufficientData = "insufficient data"
	ReasonTrendConflict    = "trend conflict"
)

// FilterStats counts outcomes of one filter across a run.
type FilterStats struct {
	Evaluated int            `json:"evaluated"`
	Passed    int            `json:"passed"`
	Rejected  int            `json:"rejected"`
	Reasons   map[string]int `json:"reasons,omitempty"`
}

// Add counts one result.
func (s *FilterStats) Add(r FilterResult) {
	s.Evaluated++
	if r.Passed {
		s.Passed++
		return
	}
	s.Rejected++
	if s.Reasons == nil {
		s.Reasons = make(map[string]int)
	}
	s.Reasons[r.Reason]++
}

// ScreeningResult is everything one run produces for the reporting side.
type ScreeningResult struct {
	RunID       string                    `json:"run_id"`
	ConfigHash  string                    `json:"config_hash"`
	StartedAt   time.Time                 `json:"started_at"`
	FinishedAt  time.Time                 `json:"finished_at"`
	Universe    int                       `json:"universe"`
	Ranked      []ScoreRecord             `json:"ranked"`
	Rejected    map[string][]FilterResult `json:"rejected"`
	FilterStats map[string]*FilterStats   `json:"filter_stats"`
	TrendStats  TrendStats                `json:"trend_stats"`
	TrendStates map[string]TrendState     `json:"trend_states,omitempty"`
	Partial     bool                      `json:"partial"`
	Skipped     []string                  `json:"skipped,omitempty"`
}

// Empty reports whether no ticker survived the filters.
func (r *ScreeningResult) Empty() bool {
	return len(r.Ranked) == 0
}

// Find returns the ranked record for ticker.
func (r *ScreeningResult) Find(ticker string) (ScoreRecord, bool) {
	for _, rec := range r.Ranked {
		if rec.Ticker == ticker {
			return rec, true
		}
	}
	return ScoreRecord{}, false
}
