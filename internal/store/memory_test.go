package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskwatch/internal/contracts"
)

func date(day int) time.Time {
	return time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
}

func TestMemoryIndicatorHistory(t *testing.T) {
	repo := NewMemoryIndicatorRepository()
	ctx := context.Background()

	// 역순으로 넣어도 조회는 오름차순
	for _, d := range []int{5, 3, 4, 1, 2} {
		require.NoError(t, repo.Upsert(ctx, contracts.ObservedValue{
			Code: "volatility-index", Date: date(d), Value: float64(d), Source: contracts.SourceSynthetic,
		}))
	}

	history, err := repo.History(ctx, "volatility-index", date(4), 252)
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i, v := range history {
		assert.Equal(t, float64(i+1), v.Value)
	}

	// maxLookback은 가장 최근 행 기준으로 자름
	capped, err := repo.History(ctx, "volatility-index", date(5), 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
	assert.Equal(t, 4.0, capped[0].Value)
	assert.Equal(t, 5.0, capped[1].Value)

	empty, err := repo.History(ctx, "no-such-code", date(5), 252)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryIndicatorUpsertOverwrites(t *testing.T) {
	repo := NewMemoryIndicatorRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, contracts.ObservedValue{
		Code: "credit-spread", Date: date(1), Value: 0.005, Source: contracts.SourceSynthetic,
	}))
	require.NoError(t, repo.Upsert(ctx, contracts.ObservedValue{
		Code: "credit-spread", Date: date(1), Value: 0.007, Source: contracts.SourceLive,
	}))

	v, err := repo.GetByDate(ctx, "credit-spread", date(1))
	require.NoError(t, err)
	assert.Equal(t, 0.007, v.Value)
	assert.Equal(t, contracts.SourceLive, v.Source)

	_, err = repo.GetByDate(ctx, "credit-spread", date(2))
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestMemoryIndicatorDayNormalization(t *testing.T) {
	repo := NewMemoryIndicatorRepository()
	ctx := context.Background()

	// 시각이 붙은 타임스탬프도 날짜 키로 정규화됨
	noon := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, contracts.ObservedValue{
		Code: "volatility-index", Date: noon, Value: 20,
	}))

	v, err := repo.GetByDate(ctx, "volatility-index", date(1))
	require.NoError(t, err)
	assert.Equal(t, date(1), v.Date)
}

func TestMemoryScoreLatestBefore(t *testing.T) {
	repo := NewMemoryScoreRepository()
	ctx := context.Background()

	for _, d := range []int{1, 3, 5} {
		require.NoError(t, repo.Save(ctx, &contracts.CompositeScore{
			Date: date(d), Score: float64(d), Level: contracts.SeverityGreen,
		}))
	}

	prior, err := repo.GetLatestBefore(ctx, date(5))
	require.NoError(t, err)
	assert.Equal(t, date(3), prior.Date)

	// strictly before: 같은 날짜는 제외
	prior, err = repo.GetLatestBefore(ctx, date(4))
	require.NoError(t, err)
	assert.Equal(t, date(3), prior.Date)

	_, err = repo.GetLatestBefore(ctx, date(1))
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, date(5), latest.Date)
}

func TestMemoryScoreRange(t *testing.T) {
	repo := NewMemoryScoreRepository()
	ctx := context.Background()

	for _, d := range []int{4, 2, 1, 3} {
		require.NoError(t, repo.Save(ctx, &contracts.CompositeScore{
			Date: date(d), Score: float64(d), Level: contracts.SeverityGreen,
		}))
	}

	scores, err := repo.GetByDateRange(ctx, date(2), date(3))
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, date(2), scores[0].Date)
	assert.Equal(t, date(3), scores[1].Date)
}
