// Package report writes screening results to JSON files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/pkg/logger"
)

// Rejection is the deciding filter result of one rejected ticker.
type Rejection struct {
	Ticker string `json:"ticker"`
	Filter string `json:"filter"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Report is the on-disk form of a screening run.
type Report struct {
	RunID       string                            `json:"run_id"`
	ConfigHash  string                            `json:"config_hash"`
	GeneratedAt time.Time                         `json:"generated_at"`
	DurationMS  int64                             `json:"duration_ms"`
	Universe    int                               `json:"universe"`
	Partial     bool                              `json:"partial"`
	Ranked      []contracts.ScoreRecord           `json:"ranked"`
	Rejections  []Rejection                       `json:"rejections"`
	FilterStats map[string]*contracts.FilterStats `json:"filter_stats"`
	TrendStats  contracts.TrendStats              `json:"trend_stats"`
	Skipped     []string                          `json:"skipped,omitempty"`
}

// Build flattens a result into a report. Rejections are sorted by ticker.
func Build(r *contracts.ScreeningResult) Report {
	rep := Report{
		RunID:       r.RunID,
		ConfigHash:  r.ConfigHash,
		GeneratedAt: r.FinishedAt,
		DurationMS:  r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
		Universe:    r.Universe,
		Partial:     r.Partial,
		Ranked:      r.Ranked,
		Rejections:  make([]Rejection, 0, len(r.Rejected)),
		FilterStats: r.FilterStats,
		TrendStats:  r.TrendStats,
		Skipped:     r.Skipped,
	}

	for ticker, results := range r.Rejected {
		for _, fr := range results {
			if fr.Passed {
				continue
			}
			rep.Rejections = append(rep.Rejections, Rejection{
				Ticker: ticker,
				Filter: fr.Filter,
				Reason: fr.Reason,
				Detail: fr.Detail,
			})
			break
		}
	}
	sort.Slice(rep.Rejections, func(i, j int) bool {
		return rep.Rejections[i].Ticker < rep.Rejections[j].Ticker
	})

	return rep
}

// Filename returns the report file name for a run finished at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("screening_%s.json", t.Format("20060102_150405"))
}

// Writer stores reports in one directory.
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a report writer
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: log,
	}
}

// Write stores r and returns the file path. A result with no ranked tickers
// produces no file and an empty path.
func (w *Writer) Write(r *contracts.ScreeningResult) (string, error) {
	if r.Empty() {
		w.logger.WithField("run_id", r.RunID).Info("No tickers passed, skipping report")
		return "", nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	finished := r.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	data, err := json.MarshalIndent(Build(r), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(w.dir, Filename(finished))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"run_id": r.RunID,
		"path":   path,
		"ranked": len(r.Ranked),
	}).Info("Report written")

	return path, nil
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", filepath.Base(path), err)
	}
	return &rep, nil
}
