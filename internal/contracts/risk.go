package contracts

import (
	"time"
)

// =============================================================================
// Source Kind
// =============================================================================

// SourceKind 관측값의 출처 태그
// ⭐ SSOT: 실데이터와 합성데이터를 저장 단계에서 구분 (투명성 요구사항)
type SourceKind string

const (
	SourceLive        SourceKind = "live"         // 실시간 API에서 수집
	SourceSynthetic   SourceKind = "synthetic"    // 시드 기반 합성 생성
	SourceExternalAPI SourceKind = "external-api" // 외부 협력 시스템이 주입
)

// =============================================================================
// Severity Level
// =============================================================================

// Severity 위험 단계
type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityYellow Severity = "yellow"
	SeverityOrange Severity = "orange"
	SeverityRed    Severity = "red"
)

// Severity boundaries: 하한 포함, 상한 미포함 (겹침/빈틈 없음)
const (
	YellowThreshold = 0.5
	OrangeThreshold = 1.0
	RedThreshold    = 1.5
)

// SeverityFromScore maps a composite score to its severity level
// score < 0.5 → green, [0.5, 1.0) → yellow, [1.0, 1.5) → orange, ≥ 1.5 → red
func SeverityFromScore(score float64) Severity {
	switch {
	case score < YellowThreshold:
		return SeverityGreen
	case score < OrangeThreshold:
		return SeverityYellow
	case score < RedThreshold:
		return SeverityOrange
	default:
		return SeverityRed
	}
}

// Rank returns the ordering of a severity level (green=0 … red=3)
func (s Severity) Rank() int {
	switch s {
	case SeverityGreen:
		return 0
	case SeverityYellow:
		return 1
	case SeverityOrange:
		return 2
	case SeverityRed:
		return 3
	default:
		return -1
	}
}

// Valid reports whether s is one of the four defined levels
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// =============================================================================
// Time convention
// =============================================================================

// Day truncates t to a calendar day in UTC
// ⭐ SSOT: 저장소 키는 항상 이 정규화를 거친 날짜를 사용
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// Core Records
// =============================================================================

// ObservedValue 지표 하나의 하루치 원시 관측값
// (code, date)당 최대 1건, upsert로 갱신 가능 (append-only, last-write-wins)
type ObservedValue struct {
	Code   string     `json:"code"`
	Date   time.Time  `json:"date"`
	Value  float64    `json:"value"`
	Source SourceKind `json:"source"`
}

// NormalizedScore 롤링 윈도우 z-score 계산 결과
// 파생 값이며 별도 저장하지 않음 — 원시 이력에서 매번 재계산
type NormalizedScore struct {
	Code       string    `json:"code"`
	Date       time.Time `json:"date"`
	Z          float64   `json:"z"`
	WindowUsed int       `json:"window_used"` // 설정 윈도우(252) 이하
	Samples    int       `json:"samples"`     // 실제 확보된 샘플 수
}

// Contribution 지표별 합성 점수 기여도
type Contribution struct {
	Code     string  `json:"code"`
	Z        float64 `json:"z"`
	Weight   float64 `json:"weight"`   // 재정규화 후 가중치
	Weighted float64 `json:"weighted"` // Z * Weight
}

// CompositeScore 날짜별 합성 위험 점수
// 동일한 ObservedValue 이력에서 재계산하면 항상 동일해야 함 (결정성 불변식)
type CompositeScore struct {
	Date          time.Time      `json:"date"`
	Score         float64        `json:"score"`
	Level         Severity       `json:"level"`
	Contributions []Contribution `json:"contributions"`
}

// Contribution returns the breakdown entry for a code, if present
func (c *CompositeScore) Contribution(code string) (Contribution, bool) {
	for _, cb := range c.Contributions {
		if cb.Code == code {
			return cb, true
		}
	}
	return Contribution{}, false
}

// AlertEvent 위험 단계 전환 이벤트
// 생성 후 불변, 알림 채널 협력자가 소비
type AlertEvent struct {
	Date       time.Time `json:"date"`
	PrevLevel  Severity  `json:"prev_level"`
	NewLevel   Severity  `json:"new_level"`
	Score      float64   `json:"score"`
	Triggering []string  `json:"triggering"` // z-score가 경보 수준인 지표 코드
}

// Escalation reports whether the event represents a risk increase
func (e *AlertEvent) Escalation() bool {
	return e.NewLevel.Rank() > e.PrevLevel.Rank()
}

// =============================================================================
// Run Summary
// =============================================================================

// RunSummary 엔진 실행 결과 요약 (CLI/스케줄러에 반환)
type RunSummary struct {
	StartedAt      time.Time      `json:"started_at"`
	Duration       time.Duration  `json:"duration"`
	DatesProcessed int            `json:"dates_processed"`
	DatesSkipped   int            `json:"dates_skipped"`
	FetchFailures  map[string]int `json:"fetch_failures,omitempty"` // code → 제외로 이어진 실패 횟수
	Fallbacks      map[string]int `json:"fallbacks,omitempty"`      // code → synthetic 대체 횟수
	AlertsFired    []AlertEvent   `json:"alerts_fired,omitempty"`
	ConfigHash     string         `json:"config_hash,omitempty"`
}
