package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/pkg/logger"
)

// 역사적 스트레스 구간. 합성 데이터로 백테스트할 때 경보 경로가
// 실제 위기 형태를 갖도록 구간 내 값을 증폭한다.
var crisisPeriods = []struct {
	start time.Time
	days  int
}{
	{time.Date(2008, 9, 15, 0, 0, 0, 0, time.UTC), 60}, // 리먼 사태
	{time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), 30}, // COVID 급락
}

// stressRatio 증폭 배율의 최대치 (구간 시작 시점)
const stressRatio = 2.0

// SyntheticAdapter generates deterministic pseudo-market values
// ⭐ SSOT: (code, date)가 같으면 항상 같은 값 — 백필 멱등성의 전제
type SyntheticAdapter struct {
	engineCfg *indicator.Config
	logger    *logger.Logger
}

// NewSyntheticAdapter creates a synthetic source adapter
func NewSyntheticAdapter(engineCfg *indicator.Config, log *logger.Logger) *SyntheticAdapter {
	return &SyntheticAdapter{
		engineCfg: engineCfg,
		logger:    log,
	}
}

// Kind returns the source tag for generated values
func (a *SyntheticAdapter) Kind() contracts.SourceKind {
	return contracts.SourceSynthetic
}

// Fetch generates the indicator value for a date
func (a *SyntheticAdapter) Fetch(ctx context.Context, code string, date time.Time) (float64, error) {
	ind, ok := a.engineCfg.Indicator(code)
	if !ok {
		return 0, fetchErr("synthetic", code, fmt.Errorf("unknown indicator"))
	}
	if ind.Synthetic.Base == 0 {
		return 0, fetchErr("synthetic", code, fmt.Errorf("no synthetic parameters configured"))
	}

	day := contracts.Day(date)
	rng := rand.New(rand.NewSource(seedFor(code, day)))

	params := ind.Synthetic
	value := params.Base * (1 + params.Noise*rng.NormFloat64())

	if f := crisisFactor(day); f > 0 {
		if ind.HigherIsRiskier {
			value *= 1 + f*(stressRatio-1)
		} else {
			// 금리차 류는 위기 시 역전: base에서 하한 아래로 밀어냄
			value -= f * (params.Base - params.Min) * stressRatio
		}
	}

	if value < params.Min {
		value = params.Min
	}
	if value > params.Max {
		value = params.Max
	}

	return value, nil
}

// seedFor derives a stable RNG seed from indicator code and date
func seedFor(code string, day time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(code))
	h.Write([]byte(day.Format("2006-01-02")))
	return int64(h.Sum64())
}

// crisisFactor returns the stress intensity for a date: 1 at the start
// of a crisis period, decaying linearly to 0 at its end
func crisisFactor(day time.Time) float64 {
	for _, p := range crisisPeriods {
		end := p.start.AddDate(0, 0, p.days)
		if !day.Before(p.start) && day.Before(end) {
			elapsed := day.Sub(p.start).Hours() / 24
			return 1 - elapsed/float64(p.days)
		}
	}
	return 0
}

var _ contracts.SourceAdapter = (*SyntheticAdapter)(nil)
