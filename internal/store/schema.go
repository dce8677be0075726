package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema DDL
// ⭐ SSOT: 엔진이 소유하는 테이블 정의는 여기서만
const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS risk;

CREATE TABLE IF NOT EXISTS risk.indicator_values (
	code       TEXT NOT NULL,
	date       DATE NOT NULL,
	value      DOUBLE PRECISION NOT NULL,
	source     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (code, date)
);

CREATE TABLE IF NOT EXISTS risk.composite_scores (
	date          DATE PRIMARY KEY,
	score         DOUBLE PRECISION NOT NULL,
	level         TEXT NOT NULL,
	contributions JSONB NOT NULL DEFAULT '[]',
	computed_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_indicator_values_date ON risk.indicator_values (date);
`

// InitSchema creates the engine's tables when they do not exist
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
