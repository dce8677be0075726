package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
)

// =============================================================================
// In-memory repositories
// DB 없이 돌리는 테스트/단발 실행용. 동작 계약은 pgx 구현과 동일.
// =============================================================================

// MemoryIndicatorRepository is an in-memory contracts.IndicatorValueRepository
type MemoryIndicatorRepository struct {
	mu     sync.RWMutex
	values map[string]map[time.Time]contracts.ObservedValue // code → date → value
}

// NewMemoryIndicatorRepository creates an empty in-memory value store
func NewMemoryIndicatorRepository() *MemoryIndicatorRepository {
	return &MemoryIndicatorRepository{
		values: make(map[string]map[time.Time]contracts.ObservedValue),
	}
}

// Upsert writes a value, overwriting any existing row for (code, date)
func (r *MemoryIndicatorRepository) Upsert(_ context.Context, v contracts.ObservedValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	date := contracts.Day(v.Date)
	if r.values[v.Code] == nil {
		r.values[v.Code] = make(map[time.Time]contracts.ObservedValue)
	}
	v.Date = date
	r.values[v.Code][date] = v
	return nil
}

// History returns values with date ≤ asOf ascending, capped to maxLookback
func (r *MemoryIndicatorRepository) History(_ context.Context, code string, asOf time.Time, maxLookback int) ([]contracts.ObservedValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := contracts.Day(asOf)
	var out []contracts.ObservedValue
	for date, v := range r.values[code] {
		if !date.After(cutoff) {
			out = append(out, v)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if len(out) > maxLookback {
		out = out[len(out)-maxLookback:]
	}
	if out == nil {
		out = []contracts.ObservedValue{}
	}
	return out, nil
}

// GetByDate returns the value for (code, date), or contracts.ErrNotFound
func (r *MemoryIndicatorRepository) GetByDate(_ context.Context, code string, date time.Time) (*contracts.ObservedValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.values[code][contracts.Day(date)]; ok {
		return &v, nil
	}
	return nil, contracts.ErrNotFound
}

// ValuesByDate returns all indicator values observed on a date
func (r *MemoryIndicatorRepository) ValuesByDate(_ context.Context, date time.Time) (map[string]contracts.ObservedValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := contracts.Day(date)
	out := make(map[string]contracts.ObservedValue)
	for code, dates := range r.values {
		if v, ok := dates[day]; ok {
			out[code] = v
		}
	}
	return out, nil
}

var _ contracts.IndicatorValueRepository = (*MemoryIndicatorRepository)(nil)

// MemoryScoreRepository is an in-memory contracts.CompositeScoreRepository
type MemoryScoreRepository struct {
	mu     sync.RWMutex
	scores map[time.Time]contracts.CompositeScore
}

// NewMemoryScoreRepository creates an empty in-memory score store
func NewMemoryScoreRepository() *MemoryScoreRepository {
	return &MemoryScoreRepository{scores: make(map[time.Time]contracts.CompositeScore)}
}

// Save persists a composite score, overwriting any existing row for the date
func (r *MemoryScoreRepository) Save(_ context.Context, score *contracts.CompositeScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := *score
	s.Date = contracts.Day(score.Date)
	r.scores[s.Date] = s
	return nil
}

// GetByDate returns the score for a date, or contracts.ErrNotFound
func (r *MemoryScoreRepository) GetByDate(_ context.Context, date time.Time) (*contracts.CompositeScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.scores[contracts.Day(date)]; ok {
		return &s, nil
	}
	return nil, contracts.ErrNotFound
}

// GetByDateRange returns scores within [from, to] ascending
func (r *MemoryScoreRepository) GetByDateRange(_ context.Context, from, to time.Time) ([]*contracts.CompositeScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo, hi := contracts.Day(from), contracts.Day(to)
	var out []*contracts.CompositeScore
	for date, s := range r.scores {
		if !date.Before(lo) && !date.After(hi) {
			copied := s
			out = append(out, &copied)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// GetLatest returns the most recent score, or contracts.ErrNotFound
func (r *MemoryScoreRepository) GetLatest(_ context.Context) (*contracts.CompositeScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *contracts.CompositeScore
	for date, s := range r.scores {
		if latest == nil || date.After(latest.Date) {
			copied := s
			latest = &copied
		}
	}
	if latest == nil {
		return nil, contracts.ErrNotFound
	}
	return latest, nil
}

// GetLatestBefore returns the most recent score strictly before date
func (r *MemoryScoreRepository) GetLatestBefore(_ context.Context, date time.Time) (*contracts.CompositeScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := contracts.Day(date)
	var latest *contracts.CompositeScore
	for d, s := range r.scores {
		if d.Before(cutoff) && (latest == nil || d.After(latest.Date)) {
			copied := s
			latest = &copied
		}
	}
	if latest == nil {
		return nil, contracts.ErrNotFound
	}
	return latest, nil
}

var _ contracts.CompositeScoreRepository = (*MemoryScoreRepository)(nil)
