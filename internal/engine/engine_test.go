package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/internal/source"
	"github.com/wonny/riskwatch/internal/store"
	"github.com/wonny/riskwatch/pkg/logger"
)

var day0 = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

// [10,12,10,12,10,30]: 단계 경로 green→yellow→green→yellow→green→red
// (첫 날짜는 샘플 1개라 undefined, 둘째 날짜가 baseline)
var testSeries = []float64{10, 12, 10, 12, 10, 30}

func testConfig() *indicator.Config {
	return &indicator.Config{
		Meta:    indicator.Meta{EngineID: "risk-test", Version: "0.0.0", Timezone: "UTC", DailyTime: "09:30"},
		Scoring: indicator.Scoring{WindowDays: 252, MinSamples: 2, AlertZ: 1.0},
		Indicators: []indicator.Indicator{
			{Code: "alpha", Name: "Alpha", Weight: 0.6, HigherIsRiskier: true},
			{Code: "beta", Name: "Beta", Weight: 0.4, HigherIsRiskier: true},
		},
	}
}

type fakeAdapter struct {
	kind  contracts.SourceKind
	calls int
	fn    func(code string, date time.Time) (float64, error)
}

func (f *fakeAdapter) Fetch(_ context.Context, code string, date time.Time) (float64, error) {
	f.calls++
	return f.fn(code, date)
}

func (f *fakeAdapter) Kind() contracts.SourceKind { return f.kind }

type fakeResolver map[string]contracts.SourceAdapter

func (r fakeResolver) AdapterFor(code string) (contracts.SourceAdapter, bool) {
	a, ok := r[code]
	return a, ok
}

func (r fakeResolver) Fallback(string) (contracts.SourceAdapter, bool) { return nil, false }

// fallbackResolver serves a synthetic stand-in alongside the primaries
type fallbackResolver struct {
	fakeResolver
	synthetic contracts.SourceAdapter
}

func (r fallbackResolver) Fallback(string) (contracts.SourceAdapter, bool) {
	return r.synthetic, r.synthetic != nil
}

type fakeNotifier struct {
	events []contracts.AlertEvent
	fail   bool
}

func (n *fakeNotifier) Name() string { return "fake" }

func (n *fakeNotifier) Notify(_ context.Context, e contracts.AlertEvent) error {
	if n.fail {
		return fmt.Errorf("delivery down")
	}
	n.events = append(n.events, e)
	return nil
}

// seriesAdapter serves testSeries indexed by day offset from day0
func seriesAdapter() *fakeAdapter {
	return &fakeAdapter{
		kind: contracts.SourceSynthetic,
		fn: func(_ string, date time.Time) (float64, error) {
			idx := int(contracts.Day(date).Sub(day0).Hours() / 24)
			if idx < 0 || idx >= len(testSeries) {
				return 0, fmt.Errorf("%w: out of series", source.ErrFetchFailed)
			}
			return testSeries[idx], nil
		},
	}
}

type fixture struct {
	engine   *Engine
	values   *store.MemoryIndicatorRepository
	scores   *store.MemoryScoreRepository
	notifier *fakeNotifier
}

func newFixture(resolver SourceResolver) *fixture {
	f := &fixture{
		values:   store.NewMemoryIndicatorRepository(),
		scores:   store.NewMemoryScoreRepository(),
		notifier: &fakeNotifier{},
	}
	f.engine = New(Options{
		Config:     testConfig(),
		ConfigHash: "deadbeef",
		Values:     f.values,
		Scores:     f.scores,
		Resolver:   resolver,
		Notifiers:  []contracts.Notifier{f.notifier},
		Logger:     logger.NewNop(),
	})
	return f
}

func TestBackfillLevelTransitions(t *testing.T) {
	adapter := seriesAdapter()
	f := newFixture(fakeResolver{"alpha": adapter, "beta": adapter})

	end := day0.AddDate(0, 0, len(testSeries)-1)
	summary, err := f.engine.Backfill(context.Background(), day0, end)
	require.NoError(t, err)

	// 첫 날짜는 모든 지표 z-score undefined → 건너뜀
	assert.Equal(t, 1, summary.DatesSkipped)
	assert.Equal(t, len(testSeries)-1, summary.DatesProcessed)
	assert.Equal(t, "deadbeef", summary.ConfigHash)
	assert.Empty(t, summary.FetchFailures)

	// baseline(yellow) 이후 전환마다 1회: green, yellow, green, red
	require.Len(t, summary.AlertsFired, 4)
	assert.Equal(t, contracts.SeverityGreen, summary.AlertsFired[0].NewLevel)
	assert.Equal(t, contracts.SeverityYellow, summary.AlertsFired[1].NewLevel)
	assert.Equal(t, contracts.SeverityGreen, summary.AlertsFired[2].NewLevel)
	assert.Equal(t, contracts.SeverityRed, summary.AlertsFired[3].NewLevel)

	last := summary.AlertsFired[3]
	assert.Equal(t, contracts.SeverityGreen, last.PrevLevel)
	assert.True(t, last.Escalation())
	assert.ElementsMatch(t, []string{"alpha", "beta"}, last.Triggering)

	assert.Equal(t, summary.AlertsFired, f.notifier.events)

	latest, err := f.scores.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contracts.SeverityRed, latest.Level)
}

func TestBackfillIdempotent(t *testing.T) {
	adapter := seriesAdapter()
	f := newFixture(fakeResolver{"alpha": adapter, "beta": adapter})

	end := day0.AddDate(0, 0, len(testSeries)-1)
	ctx := context.Background()

	_, err := f.engine.Backfill(ctx, day0, end)
	require.NoError(t, err)
	first, err := f.scores.GetByDateRange(ctx, day0, end)
	require.NoError(t, err)
	fetchesAfterFirst := adapter.calls

	rerun, err := f.engine.Backfill(ctx, day0, end)
	require.NoError(t, err)

	// 재실행: 저장된 관측값 재사용, 점수 동일, 경보 재발화 없음
	assert.Equal(t, fetchesAfterFirst, adapter.calls, "stored values must not be refetched")
	assert.Empty(t, rerun.AlertsFired)

	second, err := f.scores.GetByDateRange(ctx, day0, end)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBackfillPartialFetchFailure(t *testing.T) {
	alpha := seriesAdapter()
	failDate := day0.AddDate(0, 0, 3)
	beta := &fakeAdapter{
		kind: contracts.SourceSynthetic,
		fn: func(code string, date time.Time) (float64, error) {
			if contracts.Day(date).Equal(failDate) {
				return 0, fmt.Errorf("%w: upstream 502", source.ErrFetchFailed)
			}
			return seriesAdapter().fn(code, date)
		},
	}
	f := newFixture(fakeResolver{"alpha": alpha, "beta": beta})

	end := day0.AddDate(0, 0, len(testSeries)-1)
	summary, err := f.engine.Backfill(context.Background(), day0, end)
	require.NoError(t, err)

	// 실패한 지표만 제외되고 날짜 자체는 처리됨
	assert.Equal(t, map[string]int{"beta": 1}, summary.FetchFailures)
	assert.Equal(t, len(testSeries)-1, summary.DatesProcessed)

	sc, err := f.scores.GetByDate(context.Background(), failDate)
	require.NoError(t, err)
	require.Len(t, sc.Contributions, 1)
	assert.Equal(t, "alpha", sc.Contributions[0].Code)
	// 남은 지표로 가중치 재정규화 (0.6 → 1.0)
	assert.InDelta(t, 1.0, sc.Contributions[0].Weight, 1e-12)
}

func TestBackfillSyntheticFallback(t *testing.T) {
	failDate := day0.AddDate(0, 0, 3)
	live := &fakeAdapter{
		kind: contracts.SourceLive,
		fn: func(code string, date time.Time) (float64, error) {
			if contracts.Day(date).Equal(failDate) {
				return 0, fmt.Errorf("%w: upstream timeout", source.ErrFetchFailed)
			}
			return seriesAdapter().fn(code, date)
		},
	}
	resolver := fallbackResolver{
		fakeResolver: fakeResolver{"alpha": live, "beta": live},
		synthetic:    seriesAdapter(),
	}
	f := newFixture(resolver)

	end := day0.AddDate(0, 0, len(testSeries)-1)
	summary, err := f.engine.Backfill(context.Background(), day0, end)
	require.NoError(t, err)

	// 대체 성공은 실패가 아니라 Fallbacks로 집계되고, 어떤 날짜도 지표를 잃지 않음
	assert.Equal(t, map[string]int{"alpha": 1, "beta": 1}, summary.Fallbacks)
	assert.Empty(t, summary.FetchFailures)
	assert.Equal(t, len(testSeries)-1, summary.DatesProcessed)

	v, err := f.values.GetByDate(context.Background(), "alpha", failDate)
	require.NoError(t, err)
	assert.Equal(t, contracts.SourceSynthetic, v.Source)

	sc, err := f.scores.GetByDate(context.Background(), failDate)
	require.NoError(t, err)
	assert.Len(t, sc.Contributions, 2)
}

func TestBackfillAllAdaptersDown(t *testing.T) {
	down := &fakeAdapter{
		kind: contracts.SourceSynthetic,
		fn: func(string, time.Time) (float64, error) {
			return 0, fmt.Errorf("%w: network unreachable", source.ErrFetchFailed)
		},
	}
	f := newFixture(fakeResolver{"alpha": down, "beta": down})

	summary, err := f.engine.Backfill(context.Background(), day0, day0.AddDate(0, 0, 2))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.DatesProcessed)
	assert.Equal(t, 3, summary.DatesSkipped)
	assert.Equal(t, 2*3, summary.FetchFailures["alpha"]+summary.FetchFailures["beta"])
	assert.Empty(t, summary.AlertsFired)
}

func TestBackfillInvalidRange(t *testing.T) {
	f := newFixture(fakeResolver{})

	_, err := f.engine.Backfill(context.Background(), day0, day0.AddDate(0, 0, -1))
	assert.Error(t, err)
}

func TestRunLockRejectsConcurrentRun(t *testing.T) {
	adapter := seriesAdapter()
	f := newFixture(fakeResolver{"alpha": adapter, "beta": adapter})

	// 실행 중인 평가를 흉내내어 락 점유
	f.engine.running <- struct{}{}

	_, err := f.engine.Backfill(context.Background(), day0, day0)
	assert.ErrorIs(t, err, ErrRunInProgress)

	<-f.engine.running
	_, err = f.engine.Backfill(context.Background(), day0, day0)
	assert.NoError(t, err)
}

func TestBackfillContextCancelled(t *testing.T) {
	adapter := seriesAdapter()
	f := newFixture(fakeResolver{"alpha": adapter, "beta": adapter})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.Backfill(ctx, day0, day0.AddDate(0, 0, 5))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNotifierFailureDoesNotAbortRun(t *testing.T) {
	adapter := seriesAdapter()
	f := newFixture(fakeResolver{"alpha": adapter, "beta": adapter})
	f.notifier.fail = true

	end := day0.AddDate(0, 0, len(testSeries)-1)
	summary, err := f.engine.Backfill(context.Background(), day0, end)
	require.NoError(t, err)

	// 발송 실패는 로깅만 — 경보 이력과 처리 자체는 그대로
	assert.Len(t, summary.AlertsFired, 4)
	assert.Equal(t, len(testSeries)-1, summary.DatesProcessed)
}

func TestEnsureValueStoresSourceKind(t *testing.T) {
	adapter := seriesAdapter()
	f := newFixture(fakeResolver{"alpha": adapter, "beta": adapter})

	_, err := f.engine.Backfill(context.Background(), day0, day0)
	require.NoError(t, err)

	v, err := f.values.GetByDate(context.Background(), "alpha", day0)
	require.NoError(t, err)
	assert.Equal(t, contracts.SourceSynthetic, v.Source)
	assert.Equal(t, 10.0, v.Value)
}
