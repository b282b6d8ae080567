package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/trendscreen/internal/api/handlers"
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/internal/scheduler"
	"github.com/wonny/trendscreen/internal/screener"
	"github.com/wonny/trendscreen/internal/store"
	"github.com/wonny/trendscreen/pkg/config"
	"github.com/wonny/trendscreen/pkg/logger"
)

type stubPipeline struct {
	opts screener.RunOptions
}

func (p *stubPipeline) Run(ctx context.Context, opts screener.RunOptions) (*screener.RunOutput, error) {
	p.opts = opts
	return &screener.RunOutput{
		Result: &contracts.ScreeningResult{
			RunID:    "triggered",
			Universe: len(opts.Tickers),
			Ranked:   []contracts.ScoreRecord{{Ticker: "AAPL", Rank: 1, CompositeScore: 90}},
		},
		Duration: 250 * time.Millisecond,
	}, nil
}

func sampleRun() *contracts.ScreeningResult {
	return &contracts.ScreeningResult{
		RunID:      "run-1",
		FinishedAt: time.Now(),
		Universe:   3,
		Ranked: []contracts.ScoreRecord{
			{Ticker: "AAPL", Rank: 1, CompositeScore: 90},
			{Ticker: "MSFT", Rank: 2, CompositeScore: 80},
		},
		Rejected: map[string][]contracts.FilterResult{
			"THIN": {{Ticker: "THIN", Filter: "liquidity", Reason: "below liquidity floor"}},
		},
		TrendStates: map[string]contracts.TrendState{
			"AAPL": {Ticker: "AAPL", WeeklyTrend: contracts.TrendUp, DailyTrend: contracts.TrendUp, Aligned: true},
		},
	}
}

func newTestRouter(t *testing.T, st contracts.ResultStore, p *stubPipeline) http.Handler {
	t.Helper()
	screening := handlers.NewScreeningHandler(st, nil, time.Minute, logger.Nop())
	if p != nil {
		screening = handlers.NewScreeningHandler(st, p, time.Minute, logger.Nop())
	}
	sched := scheduler.New(scheduler.DefaultOptions(), logger.Nop())
	return NewRouter(Handlers{
		Screening: screening,
		Jobs:      handlers.NewJobsHandler(sched, logger.Nop()),
	}, logger.Nop())
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestRouter(t, store.NewMemoryStore(0), nil), "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetLatest(t *testing.T) {
	st := store.NewMemoryStore(0)
	h := newTestRouter(t, st, nil)

	rec, body := do(t, h, "GET", "/api/v1/screening/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No screening run yet", body["error"])

	require.NoError(t, st.Save(context.Background(), sampleRun()))

	rec, body = do(t, h, "GET", "/api/v1/screening/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-1", body["run_id"])
	assert.Len(t, body["ranked"], 2)

	rec, body = do(t, h, "GET", "/api/v1/screening/latest?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["ranked"], 1)

	rec, _ = do(t, h, "GET", "/api/v1/screening/latest?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	latest, err := st.Latest(context.Background())
	require.NoError(t, err)
	assert.Len(t, latest.Ranked, 2, "limit must not modify the stored run")
}

func TestGetLatestTicker(t *testing.T) {
	st := store.NewMemoryStore(0)
	require.NoError(t, st.Save(context.Background(), sampleRun()))
	h := newTestRouter(t, st, nil)

	tests := []struct {
		path   string
		code   int
		status string
	}{
		{"/api/v1/screening/latest/aapl", http.StatusOK, "ranked"},
		{"/api/v1/screening/latest/THIN", http.StatusOK, "rejected"},
		{"/api/v1/screening/latest/NOPE", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, body := do(t, h, "GET", tt.path, "")
			assert.Equal(t, tt.code, rec.Code)
			if tt.status != "" {
				assert.Equal(t, tt.status, body["status"])
			}
		})
	}

	_, body := do(t, h, "GET", "/api/v1/screening/latest/AAPL", "")
	assert.NotNil(t, body["record"])
	assert.NotNil(t, body["trend"])
}

func TestGetRun(t *testing.T) {
	st := store.NewMemoryStore(0)
	require.NoError(t, st.Save(context.Background(), sampleRun()))
	h := newTestRouter(t, st, nil)

	rec, body := do(t, h, "GET", "/api/v1/screening/runs/run-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["universe"])

	rec, _ = do(t, h, "GET", "/api/v1/screening/runs/other", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTriggerRun(t *testing.T) {
	p := &stubPipeline{}
	h := newTestRouter(t, store.NewMemoryStore(0), p)

	rec, body := do(t, h, "POST", "/api/v1/screening/run", `{"tickers":["AAPL","MSFT"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "triggered", body["run_id"])
	assert.Equal(t, float64(250), body["duration_ms"])
	assert.Equal(t, []string{"AAPL", "MSFT"}, p.opts.Tickers)
	assert.Equal(t, time.Minute, p.opts.Timeout)

	rec, _ = do(t, h, "POST", "/api/v1/screening/run", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, p.opts.Tickers)

	rec, _ = do(t, h, "POST", "/api/v1/screening/run", "{bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, "GET", "/api/v1/screening/run", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTriggerRun_Disabled(t *testing.T) {
	rec, _ := do(t, newTestRouter(t, store.NewMemoryStore(0), nil), "POST", "/api/v1/screening/run", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestJobs(t *testing.T) {
	h := newTestRouter(t, store.NewMemoryStore(0), nil)

	rec, body := do(t, h, "GET", "/api/v1/jobs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body)

	rec, _ = do(t, h, "GET", "/api/v1/jobs/daily-screening/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerTimeouts(t *testing.T) {
	cfg := &config.Config{Port: "8089", Screen: config.ScreenConfig{Timeout: 10 * time.Minute}}
	s := New(cfg, logger.Nop(), http.NewServeMux())
	assert.Equal(t, 10*time.Minute+30*time.Second, s.httpServer.WriteTimeout)
	assert.Equal(t, 15*time.Second, s.httpServer.ReadTimeout)
}
