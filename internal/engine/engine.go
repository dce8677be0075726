package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/riskwatch/internal/alert"
	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/internal/normalize"
	"github.com/wonny/riskwatch/internal/score"
	"github.com/wonny/riskwatch/internal/source"
	"github.com/wonny/riskwatch/pkg/logger"
)

// =============================================================================
// Risk Engine - 수집 → 정규화 → 합성 → 경보 오케스트레이터
// =============================================================================

// ErrRunInProgress 이미 실행 중인 평가가 있음
// 스케줄 실행과 수동 실행이 겹칠 때 두 번째 호출이 받는 에러
var ErrRunInProgress = errors.New("evaluation already in progress")

// SourceResolver resolves the adapter serving an indicator code
type SourceResolver interface {
	AdapterFor(code string) (contracts.SourceAdapter, bool)

	// Fallback returns the synthetic stand-in used when the live fetch fails.
	Fallback(code string) (contracts.SourceAdapter, bool)
}

// Engine runs the daily risk evaluation pipeline
// ⭐ SSOT: 파이프라인 단계 순서와 날짜 단위 오류 격리는 여기서만 결정
type Engine struct {
	cfg        *indicator.Config
	configHash string

	values   contracts.IndicatorValueRepository
	scores   contracts.CompositeScoreRepository
	resolver SourceResolver

	calc      *normalize.Calculator
	scorer    *score.Scorer
	evaluator *alert.Evaluator
	notifiers []contracts.Notifier

	fetchTimeout time.Duration
	logger       *logger.Logger

	// 프로세스 내 실행 락. 평가는 한 번에 하나만.
	running chan struct{}
}

// Options bundles the engine's collaborators
type Options struct {
	Config       *indicator.Config
	ConfigHash   string
	Values       contracts.IndicatorValueRepository
	Scores       contracts.CompositeScoreRepository
	Resolver     SourceResolver
	Notifiers    []contracts.Notifier
	FetchTimeout time.Duration
	Logger       *logger.Logger
}

// New creates a risk engine
func New(opts Options) *Engine {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}

	e := &Engine{
		cfg:          opts.Config,
		configHash:   opts.ConfigHash,
		values:       opts.Values,
		scores:       opts.Scores,
		resolver:     opts.Resolver,
		calc:         normalize.NewCalculator(opts.Config.Scoring),
		scorer:       score.NewScorer(opts.Config),
		evaluator:    alert.NewEvaluator(opts.Scores, opts.Config.Scoring.AlertZ),
		notifiers:    opts.Notifiers,
		fetchTimeout: opts.FetchTimeout,
		logger:       opts.Logger,
		running:      make(chan struct{}, 1),
	}
	return e
}

// RunNow evaluates today's date
func (e *Engine) RunNow(ctx context.Context) (*contracts.RunSummary, error) {
	today := contracts.Day(time.Now())
	return e.run(ctx, []time.Time{today})
}

// Backfill evaluates every date in [from, to] in chronological order.
// 멱등: 같은 구간을 다시 돌려도 저장 결과와 경보 이력이 변하지 않는다.
func (e *Engine) Backfill(ctx context.Context, from, to time.Time) (*contracts.RunSummary, error) {
	from, to = contracts.Day(from), contracts.Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("invalid backfill range: %s after %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return e.run(ctx, dates)
}

// run processes dates sequentially under the run lock
func (e *Engine) run(ctx context.Context, dates []time.Time) (*contracts.RunSummary, error) {
	select {
	case e.running <- struct{}{}:
		defer func() { <-e.running }()
	default:
		return nil, ErrRunInProgress
	}

	summary := &contracts.RunSummary{
		StartedAt:     time.Now(),
		FetchFailures: make(map[string]int),
		Fallbacks:     make(map[string]int),
		ConfigHash:    e.configHash,
	}
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	e.logger.WithFields(map[string]interface{}{
		"dates":       len(dates),
		"config_hash": e.configHash,
	}).Info("Risk evaluation started")

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		processed, err := e.processDate(ctx, date, summary)
		if err != nil {
			return summary, err
		}
		if processed {
			summary.DatesProcessed++
		} else {
			summary.DatesSkipped++
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"processed": summary.DatesProcessed,
		"skipped":   summary.DatesSkipped,
		"alerts":    len(summary.AlertsFired),
		"duration":  time.Since(summary.StartedAt).String(),
	}).Info("Risk evaluation finished")

	return summary, nil
}

// processDate runs the full pipeline for one date.
// 반환 false는 이 날짜를 건너뛰었음을 뜻함 (모든 지표 unavailable).
// 저장소 오류만 치명 에러로 전파하고, 수집 실패는 지표 단위로 격리한다.
func (e *Engine) processDate(ctx context.Context, date time.Time, summary *contracts.RunSummary) (bool, error) {
	// 1단계: 관측값 확보 (이미 저장된 값은 재수집하지 않음)
	for _, ind := range e.cfg.Indicators {
		fellBack, err := e.ensureValue(ctx, ind, date)
		if err != nil {
			if errors.Is(err, source.ErrFetchFailed) || errors.Is(err, source.ErrUnsupportedDate) {
				summary.FetchFailures[ind.Code]++
				e.logger.WithError(err).WithFields(map[string]interface{}{
					"code": ind.Code,
					"date": date.Format("2006-01-02"),
				}).Warn("Indicator fetch failed, excluding from composite")
				continue
			}
			return false, fmt.Errorf("ensure value for %s: %w", ind.Code, err)
		}
		if fellBack {
			// 값은 확보했으므로 실패가 아니라 품질 저하로 집계
			summary.Fallbacks[ind.Code]++
		}
	}

	// 2단계: 정의된 z-score 수집
	var normalized []contracts.NormalizedScore
	for _, ind := range e.cfg.Indicators {
		history, err := e.values.History(ctx, ind.Code, date, e.calc.Window())
		if err != nil {
			return false, fmt.Errorf("load history for %s: %w", ind.Code, err)
		}
		if len(history) == 0 || !contracts.Day(history[len(history)-1].Date).Equal(date) {
			// 이 날짜의 관측값이 없으면 z-score를 계산하지 않음
			continue
		}

		ns, err := e.calc.Score(ind, history)
		if err != nil {
			if errors.Is(err, normalize.ErrInsufficientHistory) || errors.Is(err, normalize.ErrDegenerateWindow) {
				e.logger.WithError(err).WithField("code", ind.Code).
					Debug("Z-score undefined, excluding from composite")
				continue
			}
			return false, fmt.Errorf("normalize %s: %w", ind.Code, err)
		}
		normalized = append(normalized, ns)
	}

	// 3단계: 합성 점수
	composite, err := e.scorer.Composite(date, normalized)
	if err != nil {
		if errors.Is(err, score.ErrAllIndicatorsUnavailable) {
			e.logger.WithField("date", date.Format("2006-01-02")).
				Warn("All indicators unavailable, skipping date")
			return false, nil
		}
		return false, fmt.Errorf("composite for %s: %w", date.Format("2006-01-02"), err)
	}

	// 4단계: 경보 판정은 저장 전에 (직전 단계가 덮어써지기 전)
	event, err := e.evaluator.Evaluate(ctx, composite)
	if err != nil {
		return false, fmt.Errorf("evaluate alert for %s: %w", date.Format("2006-01-02"), err)
	}

	if err := e.scores.Save(ctx, composite); err != nil {
		return false, fmt.Errorf("save composite for %s: %w", date.Format("2006-01-02"), err)
	}

	if event != nil {
		summary.AlertsFired = append(summary.AlertsFired, *event)
		e.notify(ctx, *event)
	}

	return true, nil
}

// ensureValue guarantees an observation exists for (indicator, date).
// 라이브 수집이 실패하면 synthetic 대체값을 시도한다 (fellBack=true로 보고).
// 대체값도 없으면 수집 오류를 그대로 반환해 지표 단위 제외로 이어진다.
func (e *Engine) ensureValue(ctx context.Context, ind indicator.Indicator, date time.Time) (bool, error) {
	if _, err := e.values.GetByDate(ctx, ind.Code, date); err == nil {
		return false, nil
	} else if !errors.Is(err, contracts.ErrNotFound) {
		return false, err
	}

	adapter, ok := e.resolver.AdapterFor(ind.Code)
	if !ok {
		return false, fmt.Errorf("%w: no adapter for %s", source.ErrFetchFailed, ind.Code)
	}

	value, err := e.fetch(ctx, adapter, ind.Code, date)
	fellBack := false
	if err != nil {
		fallback, ok := e.resolver.Fallback(ind.Code)
		if !ok || adapter.Kind() == contracts.SourceSynthetic {
			return false, err
		}

		e.logger.WithError(err).WithFields(map[string]interface{}{
			"code": ind.Code,
			"date": date.Format("2006-01-02"),
		}).Warn("Live fetch failed, using synthetic fallback")

		value, err = e.fetch(ctx, fallback, ind.Code, date)
		if err != nil {
			return false, err
		}
		adapter = fallback
		fellBack = true
	}

	return fellBack, e.values.Upsert(ctx, contracts.ObservedValue{
		Code:   ind.Code,
		Date:   contracts.Day(date),
		Value:  value,
		Source: adapter.Kind(),
	})
}

// fetch runs one adapter call under the per-call timeout
func (e *Engine) fetch(ctx context.Context, adapter contracts.SourceAdapter, code string, date time.Time) (float64, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()
	return adapter.Fetch(fetchCtx, code, date)
}

// notify fans the event out to every channel. 실패는 로깅만.
func (e *Engine) notify(ctx context.Context, event contracts.AlertEvent) {
	for _, n := range e.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			e.logger.WithError(err).WithField("channel", n.Name()).
				Error("Alert delivery failed")
			continue
		}
		e.logger.WithFields(map[string]interface{}{
			"channel": n.Name(),
			"level":   event.NewLevel,
			"date":    event.Date.Format("2006-01-02"),
		}).Info("Alert delivered")
	}
}
