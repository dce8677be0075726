package contracts

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// IndicatorValueRepository 원시 지표 관측값 저장소
// ⭐ SSOT: 모든 점수 계산의 단일 진실 공급원
type IndicatorValueRepository interface {
	// Upsert writes a value, overwriting any existing row for (code, date).
	// Idempotent; a differing overwrite is last-write-wins.
	Upsert(ctx context.Context, v ObservedValue) error

	// History returns values with date ≤ asOf in ascending date order,
	// capped to the most recent maxLookback rows. Returns an empty slice
	// (not an error) when no data exists.
	History(ctx context.Context, code string, asOf time.Time, maxLookback int) ([]ObservedValue, error)

	// GetByDate returns the value for (code, date), or ErrNotFound.
	GetByDate(ctx context.Context, code string, date time.Time) (*ObservedValue, error)

	// ValuesByDate returns all indicator values observed on a date, keyed by code.
	ValuesByDate(ctx context.Context, date time.Time) (map[string]ObservedValue, error)
}

// CompositeScoreRepository 합성 점수 저장소
// 백테스트/차트용 범위 조회와 직전 단계 조회를 지원
type CompositeScoreRepository interface {
	// Save persists a composite score, overwriting any existing row for the date.
	Save(ctx context.Context, score *CompositeScore) error

	// GetByDate returns the score for a date, or ErrNotFound.
	GetByDate(ctx context.Context, date time.Time) (*CompositeScore, error)

	// GetByDateRange returns scores within [from, to] in ascending date order.
	GetByDateRange(ctx context.Context, from, to time.Time) ([]*CompositeScore, error)

	// GetLatest returns the most recent score, or ErrNotFound.
	GetLatest(ctx context.Context) (*CompositeScore, error)

	// GetLatestBefore returns the most recent score strictly before date,
	// or ErrNotFound. 경보 평가의 "직전 단계" 조회용.
	GetLatestBefore(ctx context.Context, date time.Time) (*CompositeScore, error)
}
