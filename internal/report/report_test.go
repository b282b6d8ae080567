package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/pkg/logger"
)

func sampleResult() *contracts.ScreeningResult {
	started := time.Date(2024, 6, 3, 16, 30, 0, 0, time.UTC)
	return &contracts.ScreeningResult{
		RunID:      "run-1",
		ConfigHash: "abc",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Universe:   3,
		Ranked: []contracts.ScoreRecord{
			{Ticker: "AAPL", Rank: 1, CompositeScore: 81.5, Confidence: contracts.ConfidenceHigh},
		},
		Rejected: map[string][]contracts.FilterResult{
			"ZZZ": {{Ticker: "ZZZ", Filter: "data_quality", Reason: "duplicate dates"}},
			"MMM": {
				{Ticker: "MMM", Filter: "data_quality", Passed: true},
				{Ticker: "MMM", Filter: "liquidity", Reason: "below liquidity floor", Detail: "avg 10 < 100"},
			},
		},
		FilterStats: map[string]*contracts.FilterStats{
			"data_quality": {Evaluated: 3, Passed: 2, Rejected: 1},
		},
	}
}

func TestBuild(t *testing.T) {
	rep := Build(sampleResult())

	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, int64(1500), rep.DurationMS)
	assert.Equal(t, []Rejection{
		{Ticker: "MMM", Filter: "liquidity", Reason: "below liquidity floor", Detail: "avg 10 < 100"},
		{Ticker: "ZZZ", Filter: "data_quality", Reason: "duplicate dates"},
	}, rep.Rejections)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "screening_20240603_163001.json", Filename(time.Date(2024, 6, 3, 16, 30, 1, 0, time.UTC)))
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewWriter(dir, logger.Nop())

	path, err := w.Write(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "screening_20240603_163001.json"), path)

	rep, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rep.Ranked, 1)
	assert.Equal(t, "AAPL", rep.Ranked[0].Ticker)
	assert.Equal(t, 81.5, rep.Ranked[0].CompositeScore)
	assert.Len(t, rep.Rejections, 2)
	assert.Equal(t, 1, rep.FilterStats["data_quality"].Rejected)
}

func TestWriter_EmptyResultWritesNothing(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, logger.Nop())

	res := sampleResult()
	res.Ranked = []contracts.ScoreRecord{}

	path, err := w.Write(res)
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRead_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := Read(path)
	assert.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))
}
