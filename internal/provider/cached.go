package provider

import (
	"context"
	"math"
	"time"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/pkg/logger"
	"github.com/wonny/trendscreen/pkg/redis"
)

// cachedBar is the JSON form of a bar. JSON has no NaN, so a missing
// volume travels as null.
type cachedBar struct {
	Date   time.Time `json:"d"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume *float64  `json:"v"`
}

func toCached(s contracts.Series) []cachedBar {
	out := make([]cachedBar, len(s))
	for i, b := range s {
		out[i] = cachedBar{Date: b.Date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close}
		if b.HasVolume() {
			v := b.Volume
			out[i].Volume = &v
		}
	}
	return out
}

func fromCached(bars []cachedBar) contracts.Series {
	out := make(contracts.Series, len(bars))
	for i, b := range bars {
		out[i] = contracts.Bar{Date: b.Date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: math.NaN()}
		if b.Volume != nil {
			out[i].Volume = *b.Volume
		}
	}
	return out
}

// CachedProvider keeps parsed series in Redis in front of another provider.
// Cache failures are logged and fall through to the wrapped provider.
type CachedProvider struct {
	next   contracts.DataProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider wraps next. A disabled cache makes it a pass-through.
func NewCachedProvider(next contracts.DataProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &CachedProvider{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// Tickers is never cached; the universe listing is cheap.
func (p *CachedProvider) Tickers(ctx context.Context) ([]string, error) {
	return p.next.Tickers(ctx)
}

// Load serves cached timeframes and loads the rest from the wrapped provider.
func (p *CachedProvider) Load(ctx context.Context, ticker string, tfs []contracts.Timeframe) (contracts.TickerData, error) {
	if p.cache == nil || !p.cache.Enabled() {
		return p.next.Load(ctx, ticker, tfs)
	}

	want := withDaily(tfs)
	data := make(contracts.TickerData, len(want))
	var missing []contracts.Timeframe

	for _, tf := range want {
		var bars []cachedBar
		hit, err := p.cache.Get(ctx, redis.SeriesKey(string(tf), ticker), &bars)
		if err != nil {
			p.logger.WithError(err).WithField("ticker", ticker).Warn("Series cache read failed")
		}
		if hit {
			data[tf] = fromCached(bars)
			continue
		}
		missing = append(missing, tf)
	}

	if len(missing) == 0 {
		return data, nil
	}

	loaded, err := p.next.Load(ctx, ticker, missing)
	if err != nil {
		return nil, err
	}

	for tf, s := range loaded {
		data[tf] = s
		if err := p.cache.Set(ctx, redis.SeriesKey(string(tf), ticker), toCached(s), p.ttl); err != nil {
			p.logger.WithError(err).WithField("ticker", ticker).Warn("Series cache write failed")
		}
	}
	return data, nil
}

// Invalidate drops every cached timeframe of ticker.
func (p *CachedProvider) Invalidate(ctx context.Context, ticker string) error {
	for _, tf := range contracts.AllTimeframes() {
		if err := p.cache.Delete(ctx, redis.SeriesKey(string(tf), ticker)); err != nil {
			return err
		}
	}
	return nil
}

func withDaily(tfs []contracts.Timeframe) []contracts.Timeframe {
	out := []contracts.Timeframe{contracts.Daily}
	seen := map[contracts.Timeframe]bool{contracts.Daily: true}
	for _, tf := range tfs {
		if !seen[tf] {
			seen[tf] = true
			out = append(out, tf)
		}
	}
	return out
}
