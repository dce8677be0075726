package score

import (
	"errors"
	"fmt"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
)

// =============================================================================
// Composite Scorer - 순수 계산기
// =============================================================================

// ErrAllIndicatorsUnavailable 모든 지표의 z-score가 undefined
// 이 날짜의 CompositeScore는 생성하지 않음 (0점 대체 금지)
var ErrAllIndicatorsUnavailable = errors.New("all indicators unavailable")

// Scorer 가중 합성 점수 계산기
// ⭐ SSOT: 합성 점수와 위험 단계 산출은 여기서만
type Scorer struct {
	cfg *indicator.Config
}

// NewScorer creates a composite scorer from the indicator configuration
func NewScorer(cfg *indicator.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Composite combines per-indicator z-scores into one weighted risk score.
//
// scores에는 z-score가 정의된 지표만 전달한다 (undefined 지표는 호출부에서
// 이미 제외). 설정 가중치는 전체 지표 집합 기준 합 1이므로, 일부 지표가
// 빠졌을 때는 남은 가중치를 합 1로 재정규화한다 — 데이터 공백이 점수를
// 체계적으로 끌어내리는 것을 방지.
func (s *Scorer) Composite(date time.Time, scores []contracts.NormalizedScore) (*contracts.CompositeScore, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no defined z-scores for %s",
			ErrAllIndicatorsUnavailable, date.Format("2006-01-02"))
	}

	weights := s.cfg.Weights()

	// 포함된 지표의 가중치 합
	includedSum := 0.0
	for _, sc := range scores {
		w, ok := weights[sc.Code]
		if !ok {
			return nil, fmt.Errorf("unknown indicator in composite: %s", sc.Code)
		}
		includedSum += w
	}
	if includedSum <= 0 {
		return nil, fmt.Errorf("%w: zero total weight for %s",
			ErrAllIndicatorsUnavailable, date.Format("2006-01-02"))
	}

	// 재정규화된 가중 평균
	total := 0.0
	contributions := make([]contracts.Contribution, 0, len(scores))
	for _, sc := range scores {
		w := weights[sc.Code] / includedSum
		weighted := sc.Z * w
		total += weighted

		contributions = append(contributions, contracts.Contribution{
			Code:     sc.Code,
			Z:        sc.Z,
			Weight:   w,
			Weighted: weighted,
		})
	}

	return &contracts.CompositeScore{
		Date:          contracts.Day(date),
		Score:         total,
		Level:         contracts.SeverityFromScore(total),
		Contributions: contributions,
	}, nil
}
