package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/pkg/logger"
)

func TestRiskUpdateJobSchedule(t *testing.T) {
	cases := map[string]string{
		"09:30": "0 30 9 * * *",
		"16:05": "0 5 16 * * *",
		"00:00": "0 0 0 * * *",
		"":      "0 30 9 * * *", // malformed은 기본값
	}

	for daily, want := range cases {
		cfg := indicator.Default()
		cfg.Meta.DailyTime = daily

		job := NewRiskUpdateJob(nil, cfg, logger.NewNop())
		assert.Equal(t, want, job.Schedule(), daily)
	}
}

func TestRiskUpdateJobName(t *testing.T) {
	job := NewRiskUpdateJob(nil, indicator.Default(), logger.NewNop())
	assert.Equal(t, "risk_update", job.Name())
}
