package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/pkg/logger"
)

// IndicatorRepository implements contracts.IndicatorValueRepository
// ⭐ SSOT: 원시 지표값 저장은 여기서만
type IndicatorRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewIndicatorRepository creates a new indicator value repository
func NewIndicatorRepository(pool *pgxpool.Pool, log *logger.Logger) *IndicatorRepository {
	return &IndicatorRepository{pool: pool, log: log}
}

// Upsert writes a value, overwriting any existing row for (code, date)
// 같은 키에 다른 값이 이미 있으면 last-write-wins로 덮어쓰고 경고 로깅
func (r *IndicatorRepository) Upsert(ctx context.Context, v contracts.ObservedValue) error {
	date := contracts.Day(v.Date)

	// Detect a differing overwrite before writing (StoreWriteConflict policy)
	existing, err := r.GetByDate(ctx, v.Code, date)
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		return err
	}
	if existing != nil && math.Abs(existing.Value-v.Value) > 1e-12 {
		r.log.WithFields(map[string]interface{}{
			"code":      v.Code,
			"date":      date.Format("2006-01-02"),
			"old_value": existing.Value,
			"new_value": v.Value,
		}).Warn("Indicator value overwritten with differing value")
	}

	query := `
		INSERT INTO risk.indicator_values (code, date, value, source, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (code, date) DO UPDATE SET
			value = EXCLUDED.value,
			source = EXCLUDED.source,
			updated_at = now()
	`

	_, err = r.pool.Exec(ctx, query, v.Code, date, v.Value, string(v.Source))
	return err
}

// History returns values with date ≤ asOf ascending, capped to the most
// recent maxLookback rows. 데이터가 없으면 빈 슬라이스 (에러 아님).
func (r *IndicatorRepository) History(ctx context.Context, code string, asOf time.Time, maxLookback int) ([]contracts.ObservedValue, error) {
	query := `
		SELECT code, date, value, source FROM (
			SELECT code, date, value, source
			FROM risk.indicator_values
			WHERE code = $1 AND date <= $2
			ORDER BY date DESC
			LIMIT $3
		) recent
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, code, contracts.Day(asOf), maxLookback)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]contracts.ObservedValue, 0)
	for rows.Next() {
		var v contracts.ObservedValue
		var source string
		if err := rows.Scan(&v.Code, &v.Date, &v.Value, &source); err != nil {
			return nil, err
		}
		v.Source = contracts.SourceKind(source)
		values = append(values, v)
	}
	return values, rows.Err()
}

// GetByDate returns the value for (code, date), or contracts.ErrNotFound
func (r *IndicatorRepository) GetByDate(ctx context.Context, code string, date time.Time) (*contracts.ObservedValue, error) {
	query := `
		SELECT code, date, value, source
		FROM risk.indicator_values
		WHERE code = $1 AND date = $2
	`

	var v contracts.ObservedValue
	var source string
	err := r.pool.QueryRow(ctx, query, code, contracts.Day(date)).Scan(&v.Code, &v.Date, &v.Value, &source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, err
	}
	v.Source = contracts.SourceKind(source)
	return &v, nil
}

// ValuesByDate returns all indicator values observed on a date, keyed by code
func (r *IndicatorRepository) ValuesByDate(ctx context.Context, date time.Time) (map[string]contracts.ObservedValue, error) {
	query := `
		SELECT code, date, value, source
		FROM risk.indicator_values
		WHERE date = $1
	`

	rows, err := r.pool.Query(ctx, query, contracts.Day(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]contracts.ObservedValue)
	for rows.Next() {
		var v contracts.ObservedValue
		var source string
		if err := rows.Scan(&v.Code, &v.Date, &v.Value, &source); err != nil {
			return nil, err
		}
		v.Source = contracts.SourceKind(source)
		values[v.Code] = v
	}
	return values, rows.Err()
}

var _ contracts.IndicatorValueRepository = (*IndicatorRepository)(nil)
