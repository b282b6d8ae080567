package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/scheduler/jobs"
	"github.com/wonny/trendscreen/internal/screener"
	"github.com/wonny/trendscreen/internal/store"
	"github.com/wonny/trendscreen/pkg/logger"
)

// ScreeningHandler serves stored results and triggers ad-hoc runs.
type ScreeningHandler struct {
	store    contracts.ResultStore
	pipeline jobs.Pipeline // nil disables POST /run
	timeout  time.Duration
	running  sync.Mutex
	logger   *logger.Logger
}

// NewScreeningHandler creates a new screening handler
func NewScreeningHandler(st contracts.ResultStore, p jobs.Pipeline, timeout time.Duration, log *logger.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		store:    st,
		pipeline: p,
		timeout:  timeout,
		logger:   log,
	}
}

// RunSummary is the response of a triggered run.
type RunSummary struct {
	RunID      string                  `json:"run_id"`
	ConfigHash string                  `json:"config_hash"`
	Universe   int                     `json:"universe"`
	Rejected   int                     `json:"rejected"`
	Partial    bool                    `json:"partial"`
	Ranked     []contracts.ScoreRecord `json:"ranked"`
	ReportPath string                  `json:"report_path,omitempty"`
	DurationMS int64                   `json:"duration_ms"`
}

// TickerResult is the outcome of one ticker in a run.
type TickerResult struct {
	RunID   string                   `json:"run_id"`
	Ticker  string                   `json:"ticker"`
	Status  string                   `json:"status"` // ranked, rejected
	Record  *contracts.ScoreRecord   `json:"record,omitempty"`
	Filters []contracts.FilterResult `json:"filters,omitempty"`
	Trend   *contracts.TrendState    `json:"trend,omitempty"`
}

// RunRequest optionally restricts a triggered run.
type RunRequest struct {
	Tickers []string `json:"tickers"`
}

// GetLatest returns the most recent run
// GET /api/v1/screening/latest?limit=N
func (h *ScreeningHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	result, err := h.store.Latest(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No screening run yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest run")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, truncate(result, limit))
}

// GetLatestTicker returns one ticker of the most recent run
// GET /api/v1/screening/latest/{ticker}
func (h *ScreeningHandler) GetLatestTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	result, err := h.store.Latest(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No screening run yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest run")
		return
	}

	out := TickerResult{RunID: result.RunID, Ticker: ticker}
	if state, ok := result.TrendStates[ticker]; ok {
		out.Trend = &state
	}

	if rec, ok := result.Find(ticker); ok {
		out.Status = "ranked"
		out.Record = &rec
		respondJSON(w, http.StatusOK, out)
		return
	}
	if filters, ok := result.Rejected[ticker]; ok {
		out.Status = "rejected"
		out.Filters = filters
		respondJSON(w, http.StatusOK, out)
		return
	}

	respondError(w, http.StatusNotFound, "Ticker not ranked or rejected in the latest run")
}

// GetRun returns one run by id
// GET /api/v1/screening/runs/{id}
func (h *ScreeningHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", id).Error("Failed to get run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Run screens now and waits for the result. Only one run at a time.
// POST /api/v1/screening/run
func (h *ScreeningHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.pipeline == nil {
		respondError(w, http.StatusServiceUnavailable, "Screening runs are not enabled")
		return
	}

	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if !h.running.TryLock() {
		respondError(w, http.StatusConflict, "A screening run is already in progress")
		return
	}
	defer h.running.Unlock()

	out, err := h.pipeline.Run(r.Context(), screener.RunOptions{
		Tickers: req.Tickers,
		Timeout: h.timeout,
	})
	if err != nil {
		h.logger.WithError(err).Error("Triggered screening failed")
		respondError(w, http.StatusInternalServerError, "Screening run failed")
		return
	}

	res := out.Result
	respondJSON(w, http.StatusOK, RunSummary{
		RunID:      res.RunID,
		ConfigHash: res.ConfigHash,
		Universe:   res.Universe,
		Rejected:   len(res.Rejected),
		Partial:    res.Partial,
		Ranked:     res.Ranked,
		ReportPath: out.ReportPath,
		DurationMS: out.Duration.Milliseconds(),
	})
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	return n, nil
}

// truncate returns a shallow copy of r with at most limit ranked records.
func truncate(r *contracts.ScreeningResult, limit int) *contracts.ScreeningResult {
	if limit <= 0 || len(r.Ranked) <= limit {
		return r
	}
	cp := *r
	cp.Ranked = r.Ranked[:limit]
	return &cp
}
