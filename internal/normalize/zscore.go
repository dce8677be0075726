package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
)

// =============================================================================
// Rolling Z-Score Calculator - 순수 계산기
// =============================================================================

var (
	// ErrInsufficientHistory 샘플이 최소 개수 미만 (z-score undefined)
	ErrInsufficientHistory = errors.New("insufficient history for z-score")
	// ErrDegenerateWindow 윈도우 내 분산이 0 (z-score undefined)
	ErrDegenerateWindow = errors.New("degenerate window: zero standard deviation")
)

// Calculator 롤링 z-score 계산기 (순수 계산기)
// ⭐ SSOT: 정규화 계산은 여기서만. 데이터 조회는 상위 레이어(엔진)에서 조립.
//
// 윈도우 정책: 점수 대상 날짜의 값 자체를 윈도우에 포함한다 (self-inclusive).
// 원본 구현의 pandas rolling과 동일하며, 백필에서도 같은 정책을 사용해야
// 결정성 불변식이 유지된다.
//
// 표준편차는 표본 표준편차 (n-1 분모) 사용.
type Calculator struct {
	window     int // 최대 lookback (기본 252 거래일)
	minSamples int // undefined 판정 하한 (기본 2)
}

// NewCalculator creates a calculator with the configured window
func NewCalculator(scoring indicator.Scoring) *Calculator {
	return &Calculator{
		window:     scoring.WindowDays,
		minSamples: scoring.MinSamples,
	}
}

// Window returns the configured maximum lookback
func (c *Calculator) Window() int {
	return c.window
}

// Score computes the rolling z-score for the last entry of history.
// history는 날짜 오름차순이어야 하며 마지막 원소가 점수 대상 날짜의 값이다.
// 반환 z는 극성 보정 후 값: 항상 클수록 위험.
func (c *Calculator) Score(ind indicator.Indicator, history []contracts.ObservedValue) (contracts.NormalizedScore, error) {
	if len(history) < c.minSamples {
		return contracts.NormalizedScore{}, fmt.Errorf("%w: %s has %d samples, need %d",
			ErrInsufficientHistory, ind.Code, len(history), c.minSamples)
	}

	// 윈도우보다 이력이 짧으면 가용 샘플 전체를 사용 (graceful degradation)
	window := c.window
	if len(history) < window {
		window = len(history)
	}
	windowed := history[len(history)-window:]

	values := make([]float64, len(windowed))
	for i, v := range windowed {
		values[i] = v.Value
	}

	mean := Mean(values)
	stdev := SampleStdDev(values, mean)

	if stdev == 0 {
		return contracts.NormalizedScore{}, fmt.Errorf("%w: %s", ErrDegenerateWindow, ind.Code)
	}

	current := history[len(history)-1]
	z := (current.Value - mean) / stdev

	// 극성 보정: "낮을수록 위험"인 지표는 부호 반전
	if !ind.HigherIsRiskier {
		z = -z
	}

	return contracts.NormalizedScore{
		Code:       ind.Code,
		Date:       contracts.Day(current.Date),
		Z:          z,
		WindowUsed: window,
		Samples:    len(windowed),
	}, nil
}

// Mean 산술 평균
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev 표본 표준편차 (n-1 분모)
// 샘플이 1개 이하이면 0 반환 (호출부에서 degenerate 처리)
func SampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
