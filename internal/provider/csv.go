// Package provider loads OHLCV series into memory before a screening run.
package provider

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/pkg/logger"
)

// ErrNotFound means the provider has no daily series for a ticker.
var ErrNotFound = errors.New("series not found")

var columns = []string{"date", "open", "high", "low", "close", "volume"}

// CSVProvider reads <root>/<timeframe>/<TICKER>.csv files. Weekly and
// monthly series missing on disk are resampled from daily.
type CSVProvider struct {
	root   string
	logger *logger.Logger
}

// NewCSVProvider creates a CSV directory provider
func NewCSVProvider(root string, log *logger.Logger) *CSVProvider {
	return &CSVProvider{
		root:   root,
		logger: log,
	}
}

// Path returns the file path of one series.
func (p *CSVProvider) Path(tf contracts.Timeframe, ticker string) string {
	return filepath.Join(p.root, string(tf), strings.ToUpper(ticker)+".csv")
}

// Tickers lists every ticker with a daily file, sorted.
func (p *CSVProvider) Tickers(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, string(contracts.Daily)))
	if err != nil {
		return nil, fmt.Errorf("list daily series: %w", err)
	}

	tickers := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		tickers = append(tickers, strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name))))
	}
	sort.Strings(tickers)
	return tickers, nil
}

// Load reads the requested timeframes of one ticker. Daily is always read.
func (p *CSVProvider) Load(ctx context.Context, ticker string, tfs []contracts.Timeframe) (contracts.TickerData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	daily, err := p.readFile(p.Path(contracts.Daily, ticker))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("%s daily: %w", ticker, err)
	}

	data := contracts.TickerData{contracts.Daily: daily}
	for _, tf := range tfs {
		if tf == contracts.Daily {
			continue
		}
		if !tf.Valid() {
			return nil, fmt.Errorf("unsupported timeframe %q", tf)
		}

		series, err := p.readFile(p.Path(tf, ticker))
		switch {
		case err == nil:
			data[tf] = series
		case errors.Is(err, os.ErrNotExist):
			data[tf] = Resample(daily, tf)
			p.logger.WithFields(map[string]interface{}{
				"ticker":    ticker,
				"timeframe": tf,
				"bars":      len(data[tf]),
			}).Debug("Resampled missing series from daily")
		default:
			return nil, fmt.Errorf("%s %s: %w", ticker, tf, err)
		}
	}

	return data, nil
}

func (p *CSVProvider) readFile(path string) (contracts.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadSeries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// ReadSeries parses CSV with a date,open,high,low,close,volume header in any
// column order. A blank volume is missing, not zero. Rows keep file order.
func ReadSeries(r io.Reader) (contracts.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var series contracts.Series
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		bar, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		series = append(series, bar)
	}
	return series, nil
}

func parseRow(row []string, idx map[string]int) (contracts.Bar, error) {
	var bar contracts.Bar

	date, err := parseDate(row[idx["date"]])
	if err != nil {
		return bar, err
	}
	bar.Date = date

	prices := []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
	}
	for _, p := range prices {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx[p.name]]), 64)
		if err != nil {
			return bar, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = v
	}

	vol := strings.TrimSpace(row[idx["volume"]])
	if vol == "" {
		bar.Volume = math.NaN()
		return bar, nil
	}
	bar.Volume, err = strconv.ParseFloat(vol, 64)
	if err != nil {
		return bar, fmt.Errorf("volume: %w", err)
	}
	return bar, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// WriteSeries renders s in the format ReadSeries accepts.
func WriteSeries(w io.Writer, s contracts.Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, b := range s {
		vol := ""
		if b.HasVolume() {
			vol = strconv.FormatFloat(b.Volume, 'f', -1, 64)
		}
		row := []string{
			b.Date.Format("2006-01-02"),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			vol,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes s to the provider layout under root.
func (p *CSVProvider) WriteFile(tf contracts.Timeframe, ticker string, s contracts.Series) error {
	path := p.Path(tf, ticker)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	return WriteSeries(f, s)
}
