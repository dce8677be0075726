package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/engine"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/pkg/logger"
	"github.com/wonny/riskwatch/pkg/redis"
)

const (
	defaultHistoryDays = 90
	maxHistoryDays     = 365

	latestCacheKey = "risk:latest"
)

// RiskHandler handles risk-related API endpoints
// ⭐ SSOT: 리스크 API 핸들러는 이 구조체에서만
type RiskHandler struct {
	values   contracts.IndicatorValueRepository
	scores   contracts.CompositeScoreRepository
	engine   *engine.Engine
	cfg      *indicator.Config
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(
	values contracts.IndicatorValueRepository,
	scores contracts.CompositeScoreRepository,
	eng *engine.Engine,
	cfg *indicator.Config,
	cache *redis.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *RiskHandler {
	return &RiskHandler{
		values:   values,
		scores:   scores,
		engine:   eng,
		cfg:      cfg,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// GetLatest returns the most recent composite score
// GET /api/risk/latest
func (h *RiskHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached contracts.CompositeScore
	if hit, err := h.cache.Get(ctx, latestCacheKey, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	latest, err := h.scores.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "No composite score computed yet")
			return
		}
		h.logger.WithError(err).Error("Failed to load latest score")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest score")
		return
	}

	if err := h.cache.Set(ctx, latestCacheKey, latest, h.cacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache latest score")
	}

	respondJSON(w, http.StatusOK, latest)
}

// GetHistory returns composite scores for the trailing N days
// GET /api/risk/history?days=90
func (h *RiskHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "Invalid 'days' parameter (expected positive integer)")
			return
		}
		days = parsed
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	to := contracts.Day(time.Now())
	from := to.AddDate(0, 0, -days)

	scores, err := h.scores.GetByDateRange(ctx, from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load score history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve score history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
		"count":  len(scores),
		"scores": scores,
	})
}

// GetIndicators returns raw indicator observations for a date
// GET /api/risk/indicators?date=2026-08-25 (기본: 최근 점수 날짜)
func (h *RiskHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
			return
		}
		date = contracts.Day(parsed)
	} else {
		latest, err := h.scores.GetLatest(ctx)
		if err != nil {
			if errors.Is(err, contracts.ErrNotFound) {
				respondError(w, http.StatusNotFound, "No composite score computed yet")
				return
			}
			h.logger.WithError(err).Error("Failed to load latest score")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve latest score")
			return
		}
		date = latest.Date
	}

	values, err := h.values.ValuesByDate(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load indicator values")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve indicator values")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":       date.Format("2006-01-02"),
		"indicators": values,
	})
}

// RunResponse represents a manual evaluation response
type RunResponse struct {
	Status  string                `json:"status"`
	Summary *contracts.RunSummary `json:"summary,omitempty"`
}

// TriggerRun runs today's evaluation on demand
// POST /api/risk/run
func (h *RiskHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.Info("Manual risk evaluation triggered via API")

	summary, err := h.engine.RunNow(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrRunInProgress) {
			respondError(w, http.StatusConflict, "An evaluation is already in progress")
			return
		}
		h.logger.WithError(err).Error("Manual risk evaluation failed")
		respondError(w, http.StatusInternalServerError, "Risk evaluation failed")
		return
	}

	// 새 점수가 저장되었으므로 스냅샷 캐시 무효화
	if err := h.cache.Delete(ctx, latestCacheKey); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate latest score cache")
	}

	respondJSON(w, http.StatusOK, RunResponse{Status: "success", Summary: summary})
}

// GetConfig returns the active indicator configuration
// GET /api/risk/config
func (h *RiskHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cfg)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
