package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/riskwatch/internal/engine"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/internal/scheduler"
	"github.com/wonny/riskwatch/pkg/logger"
)

// RiskUpdateJob runs the daily risk evaluation
// ⭐ SSOT: 일일 평가 스케줄은 이 Job에서만
type RiskUpdateJob struct {
	engine *engine.Engine
	cfg    *indicator.Config
	logger *logger.Logger
}

// NewRiskUpdateJob creates the daily evaluation job
func NewRiskUpdateJob(eng *engine.Engine, cfg *indicator.Config, log *logger.Logger) *RiskUpdateJob {
	return &RiskUpdateJob{
		engine: eng,
		cfg:    cfg,
		logger: log,
	}
}

// Name returns the job name
func (j *RiskUpdateJob) Name() string {
	return "risk_update"
}

// Schedule returns the cron schedule from the indicator configuration
// (기본 09:30 — 시장 개장 직후, 전일 마감 데이터가 모두 확정된 시점)
func (j *RiskUpdateJob) Schedule() string {
	parts := strings.SplitN(j.cfg.Meta.DailyTime, ":", 2)
	if len(parts) != 2 {
		return "0 30 9 * * *"
	}
	hour := strings.TrimPrefix(parts[0], "0")
	if hour == "" {
		hour = "0"
	}
	minute := strings.TrimPrefix(parts[1], "0")
	if minute == "" {
		minute = "0"
	}
	return fmt.Sprintf("0 %s %s * * *", minute, hour)
}

// Run executes today's risk evaluation
func (j *RiskUpdateJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled risk evaluation")

	summary, err := j.engine.RunNow(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrRunInProgress) {
			// 수동 실행과 겹침 — 재시도 없이 다음 스케줄을 기다림
			return fmt.Errorf("%w: %v", scheduler.ErrSkipRetry, err)
		}
		return fmt.Errorf("risk evaluation: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"processed": summary.DatesProcessed,
		"skipped":   summary.DatesSkipped,
		"alerts":    len(summary.AlertsFired),
	}).Info("Scheduled risk evaluation completed")

	return nil
}
