package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/store"
)

// scoreForLevel builds a composite score sitting inside a level's band
func scoreForLevel(date time.Time, level contracts.Severity) *contracts.CompositeScore {
	var value float64
	switch level {
	case contracts.SeverityGreen:
		value = 0.2
	case contracts.SeverityYellow:
		value = 0.7
	case contracts.SeverityOrange:
		value = 1.2
	case contracts.SeverityRed:
		value = 1.8
	}
	return &contracts.CompositeScore{
		Date:  contracts.Day(date),
		Score: value,
		Level: level,
		Contributions: []contracts.Contribution{
			{Code: "volatility-index", Z: value * 2, Weight: 0.5, Weighted: value},
			{Code: "credit-spread", Z: 0.1, Weight: 0.5, Weighted: 0.05},
		},
	}
}

func TestEvaluateFirstRunEstablishesBaseline(t *testing.T) {
	scores := store.NewMemoryScoreRepository()
	eval := NewEvaluator(scores, 1.0)

	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	event, err := eval.Evaluate(context.Background(), scoreForLevel(date, contracts.SeverityOrange))

	require.NoError(t, err)
	assert.Nil(t, event, "first run must not fire even at orange")
}

func TestEvaluateLevelSequence(t *testing.T) {
	// [green, green, yellow, yellow, red, orange] → exactly 3 alerts
	sequence := []contracts.Severity{
		contracts.SeverityGreen,
		contracts.SeverityGreen,
		contracts.SeverityYellow,
		contracts.SeverityYellow,
		contracts.SeverityRed,
		contracts.SeverityOrange,
	}

	scores := store.NewMemoryScoreRepository()
	eval := NewEvaluator(scores, 1.0)
	ctx := context.Background()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var events []*contracts.AlertEvent

	for i, level := range sequence {
		date := start.AddDate(0, 0, i)
		newScore := scoreForLevel(date, level)

		event, err := eval.Evaluate(ctx, newScore)
		require.NoError(t, err)
		if event != nil {
			events = append(events, event)
		}

		// 평가 후 저장 (엔진과 동일한 순서)
		require.NoError(t, scores.Save(ctx, newScore))
	}

	require.Len(t, events, 3, "sequence should fire exactly 3 alerts")

	assert.Equal(t, contracts.SeverityGreen, events[0].PrevLevel)
	assert.Equal(t, contracts.SeverityYellow, events[0].NewLevel)
	assert.True(t, events[0].Escalation())

	assert.Equal(t, contracts.SeverityYellow, events[1].PrevLevel)
	assert.Equal(t, contracts.SeverityRed, events[1].NewLevel)
	assert.True(t, events[1].Escalation())

	// 하락 전환도 1회는 발화
	assert.Equal(t, contracts.SeverityRed, events[2].PrevLevel)
	assert.Equal(t, contracts.SeverityOrange, events[2].NewLevel)
	assert.False(t, events[2].Escalation())
}

func TestEvaluateReRunSameDateDoesNotRefire(t *testing.T) {
	scores := store.NewMemoryScoreRepository()
	eval := NewEvaluator(scores, 1.0)
	ctx := context.Background()

	d1 := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	require.NoError(t, scores.Save(ctx, scoreForLevel(d1, contracts.SeverityGreen)))

	// 첫 평가: green→red 발화
	redScore := scoreForLevel(d2, contracts.SeverityRed)
	event, err := eval.Evaluate(ctx, redScore)
	require.NoError(t, err)
	require.NotNil(t, event)
	require.NoError(t, scores.Save(ctx, redScore))

	// 같은 날짜 재평가 (결정적 재계산): 재발화 금지
	event, err = eval.Evaluate(ctx, scoreForLevel(d2, contracts.SeverityRed))
	require.NoError(t, err)
	assert.Nil(t, event, "re-evaluating the same date at the same level must not refire")
}

func TestEvaluateTriggeringIndicators(t *testing.T) {
	scores := store.NewMemoryScoreRepository()
	eval := NewEvaluator(scores, 1.0)
	ctx := context.Background()

	d1 := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	require.NoError(t, scores.Save(ctx, scoreForLevel(d1, contracts.SeverityGreen)))

	newScore := &contracts.CompositeScore{
		Date:  d1.AddDate(0, 0, 1),
		Score: 1.6,
		Level: contracts.SeverityRed,
		Contributions: []contracts.Contribution{
			{Code: "volatility-index", Z: 3.2, Weight: 0.4, Weighted: 1.28},
			{Code: "interbank-spread", Z: 1.0, Weight: 0.15, Weighted: 0.15},
			{Code: "credit-spread", Z: 0.4, Weight: 0.1, Weighted: 0.04},
		},
	}

	event, err := eval.Evaluate(ctx, newScore)
	require.NoError(t, err)
	require.NotNil(t, event)

	// z ≥ 1.0인 지표만 triggering으로 표기
	assert.Equal(t, []string{"volatility-index", "interbank-spread"}, event.Triggering)
	assert.Equal(t, 1.6, event.Score)
}
