package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/pkg/config"
	"github.com/wonny/trendscreen/pkg/database"
	"github.com/wonny/trendscreen/pkg/logger"
	"github.com/wonny/trendscreen/pkg/redis"
)

var _ contracts.ResultStore = (*MemoryStore)(nil)
var _ contracts.ResultStore = (*PostgresStore)(nil)
var _ contracts.ResultStore = (*CachedStore)(nil)

func result(finished time.Time) *contracts.ScreeningResult {
	return &contracts.ScreeningResult{
		RunID:      uuid.NewString(),
		ConfigHash: "hash",
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
		Universe:   2,
		Ranked: []contracts.ScoreRecord{{
			Ticker:         "AAPL",
			Rank:           1,
			LiquidityScore: 100,
			TrendScore:     75,
			TrendBreakdown: map[string]float64{"ma_alignment": 100, "adx_strength": 50},
			SignalScore:    80,
			CompositeScore: 82,
			Signals:        []string{"breakout"},
			Confidence:     contracts.ConfidenceMedium,
		}},
		Rejected: map[string][]contracts.FilterResult{
			"THIN": {{Ticker: "THIN", Filter: "liquidity", Reason: "below liquidity floor"}},
		},
		FilterStats: map[string]*contracts.FilterStats{
			"liquidity": {Evaluated: 2, Passed: 1, Rejected: 1, Reasons: map[string]int{"below liquidity floor": 1}},
		},
		TrendStats: contracts.TrendStats{Unknown: 1},
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_, err := s.Latest(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	now := time.Now()
	older := result(now.Add(-time.Hour))
	newer := result(now)

	require.NoError(t, s.Save(ctx, newer))
	require.NoError(t, s.Save(ctx, older))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.RunID, latest.RunID)

	got, err := s.Get(ctx, older.RunID)
	require.NoError(t, err)
	assert.Equal(t, older, got)

	_, err = s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Error(t, s.Save(ctx, newer), "duplicate run id")
	assert.Error(t, s.Save(ctx, &contracts.ScreeningResult{}), "missing run id")
}

func TestMemoryStore_Limit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	now := time.Now()
	first := result(now)
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, result(now.Add(time.Minute))))
	last := result(now.Add(2 * time.Minute))
	require.NoError(t, s.Save(ctx, last))

	assert.Equal(t, 2, s.Len())
	_, err := s.Get(ctx, first.RunID)
	assert.True(t, errors.Is(err, ErrNotFound))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.RunID, latest.RunID)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{URL: url, MaxConns: 2})
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db.Pool)
	require.NoError(t, s.Migrate(ctx))

	want := result(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, s.Save(ctx, want))
	defer db.Pool.Exec(ctx, `DELETE FROM screener_runs WHERE run_id = $1`, want.RunID)

	got, err := s.Get(ctx, want.RunID)
	require.NoError(t, err)
	assert.Equal(t, want.ConfigHash, got.ConfigHash)
	assert.Equal(t, want.Ranked, got.Ranked)
	assert.Equal(t, want.Rejected, got.Rejected)
	assert.Equal(t, want.FilterStats, got.FilterStats)
	assert.Equal(t, want.TrendStats, got.TrendStats)
	assert.True(t, want.FinishedAt.Equal(got.FinishedAt))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.RunID, latest.RunID)

	_, err = s.Get(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCachedStore_DisabledCache(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore(0)
	s := NewCachedStore(mem, redis.NewCache(redis.Disabled(), "test"), logger.Nop())

	_, err := s.Latest(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	r := result(time.Now())
	require.NoError(t, s.Save(ctx, r))
	assert.Equal(t, 1, mem.Len())

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.RunID, latest.RunID)

	got, err := s.Get(ctx, r.RunID)
	require.NoError(t, err)
	assert.Same(t, r, got)
}
