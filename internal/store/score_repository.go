package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskwatch/internal/contracts"
)

// ScoreRepository implements contracts.CompositeScoreRepository
// ⭐ SSOT: 합성 점수 저장은 여기서만
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new composite score repository
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// Save persists a composite score, overwriting any existing row for the date
func (r *ScoreRepository) Save(ctx context.Context, score *contracts.CompositeScore) error {
	contributions, err := json.Marshal(score.Contributions)
	if err != nil {
		return fmt.Errorf("marshal contributions: %w", err)
	}

	query := `
		INSERT INTO risk.composite_scores (date, score, level, contributions, computed_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (date) DO UPDATE SET
			score = EXCLUDED.score,
			level = EXCLUDED.level,
			contributions = EXCLUDED.contributions,
			computed_at = now()
	`

	_, err = r.pool.Exec(ctx, query,
		contracts.Day(score.Date), score.Score, string(score.Level), contributions,
	)
	return err
}

// GetByDate returns the score for a date, or contracts.ErrNotFound
func (r *ScoreRepository) GetByDate(ctx context.Context, date time.Time) (*contracts.CompositeScore, error) {
	query := `
		SELECT date, score, level, contributions
		FROM risk.composite_scores
		WHERE date = $1
	`

	return r.scanOne(r.pool.QueryRow(ctx, query, contracts.Day(date)))
}

// GetByDateRange returns scores within [from, to] in ascending date order
func (r *ScoreRepository) GetByDateRange(ctx context.Context, from, to time.Time) ([]*contracts.CompositeScore, error) {
	query := `
		SELECT date, score, level, contributions
		FROM risk.composite_scores
		WHERE date BETWEEN $1 AND $2
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, contracts.Day(from), contracts.Day(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*contracts.CompositeScore
	for rows.Next() {
		score, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// GetLatest returns the most recent score, or contracts.ErrNotFound
func (r *ScoreRepository) GetLatest(ctx context.Context) (*contracts.CompositeScore, error) {
	query := `
		SELECT date, score, level, contributions
		FROM risk.composite_scores
		ORDER BY date DESC
		LIMIT 1
	`

	return r.scanOne(r.pool.QueryRow(ctx, query))
}

// GetLatestBefore returns the most recent score strictly before date
func (r *ScoreRepository) GetLatestBefore(ctx context.Context, date time.Time) (*contracts.CompositeScore, error) {
	query := `
		SELECT date, score, level, contributions
		FROM risk.composite_scores
		WHERE date < $1
		ORDER BY date DESC
		LIMIT 1
	`

	return r.scanOne(r.pool.QueryRow(ctx, query, contracts.Day(date)))
}

// scanOne scans a single-row query result
func (r *ScoreRepository) scanOne(row pgx.Row) (*contracts.CompositeScore, error) {
	score, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, err
	}
	return score, nil
}

// scanRow scans the common column set
func (r *ScoreRepository) scanRow(row pgx.Row) (*contracts.CompositeScore, error) {
	var score contracts.CompositeScore
	var level string
	var contributions []byte

	if err := row.Scan(&score.Date, &score.Score, &level, &contributions); err != nil {
		return nil, err
	}

	score.Level = contracts.Severity(level)
	if err := json.Unmarshal(contributions, &score.Contributions); err != nil {
		return nil, fmt.Errorf("unmarshal contributions: %w", err)
	}
	return &score, nil
}

var _ contracts.CompositeScoreRepository = (*ScoreRepository)(nil)
