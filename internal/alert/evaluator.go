package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
)

// Evaluator decides whether a computed composite score warrants an alert
// ⭐ SSOT: 경보 발화 판단은 여기서만
//
// "직전 단계"는 숨은 인메모리 상태가 아니라 저장소의 최근 CompositeScore에서
// 읽는다 — 멀티 프로세스 배포와 결정적 테스트를 위해.
type Evaluator struct {
	scores contracts.CompositeScoreRepository
	alertZ float64 // triggering indicator 표기 하한
}

// NewEvaluator creates an alert evaluator
func NewEvaluator(scores contracts.CompositeScoreRepository, alertZ float64) *Evaluator {
	return &Evaluator{scores: scores, alertZ: alertZ}
}

// Evaluate compares a freshly computed score against the most recent
// persisted level and returns an AlertEvent when the level changed.
//
// 정책 (호출 시점: newScore 저장 전):
//   - 단계 상승은 항상 발화 (점프 포함)
//   - 단계 하락도 전환당 1회 발화; 같은 단계 연속 평가는 재발화하지 않음
//   - 이전 기록이 전혀 없으면 baseline만 세우고 발화하지 않음
//
// 같은 날짜를 재평가할 때는 그 날짜에 이미 저장된 점수와 비교하므로,
// 결정성 불변식이 지켜지는 한 백필 재실행이 경보를 중복 발화하지 않는다.
func (e *Evaluator) Evaluate(ctx context.Context, newScore *contracts.CompositeScore) (*contracts.AlertEvent, error) {
	prev, err := e.previousLevel(ctx, newScore.Date)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			// First run: establish baseline only
			return nil, nil
		}
		return nil, fmt.Errorf("load previous level: %w", err)
	}

	if prev == newScore.Level {
		return nil, nil
	}

	return &contracts.AlertEvent{
		Date:       newScore.Date,
		PrevLevel:  prev,
		NewLevel:   newScore.Level,
		Score:      newScore.Score,
		Triggering: e.triggering(newScore),
	}, nil
}

// previousLevel resolves the level to compare against:
// 같은 날짜에 저장된 점수가 있으면 그 단계, 없으면 직전 날짜의 단계
func (e *Evaluator) previousLevel(ctx context.Context, date time.Time) (contracts.Severity, error) {
	if sameDay, err := e.scores.GetByDate(ctx, date); err == nil {
		return sameDay.Level, nil
	} else if !errors.Is(err, contracts.ErrNotFound) {
		return "", err
	}

	prior, err := e.scores.GetLatestBefore(ctx, date)
	if err != nil {
		return "", err
	}
	return prior.Level, nil
}

// triggering lists indicator codes whose polarity-adjusted z is at alert level
func (e *Evaluator) triggering(score *contracts.CompositeScore) []string {
	var codes []string
	for _, c := range score.Contributions {
		if c.Z >= e.alertZ {
			codes = append(codes, c.Code)
		}
	}
	return codes
}
