package indicator

import (
	"fmt"
	"math"
	"regexp"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.EngineID == "" {
		return ValidationError{"meta.engine_id", "required"}
	}
	if cfg.Meta.DailyTime != "" && !hhmmPattern.MatchString(cfg.Meta.DailyTime) {
		return ValidationError{"meta.daily_time", "must be HH:MM"}
	}

	// === Scoring ===
	if cfg.Scoring.WindowDays < 2 {
		return ValidationError{"scoring.window_days", "must be >= 2"}
	}
	if cfg.Scoring.MinSamples < 2 {
		return ValidationError{"scoring.min_samples", "must be >= 2"}
	}

	// === Indicators ===
	if len(cfg.Indicators) == 0 {
		return ValidationError{"indicators", "at least one indicator required"}
	}

	seen := make(map[string]bool)
	weightSum := 0.0
	for i, ind := range cfg.Indicators {
		field := fmt.Sprintf("indicators[%d]", i)

		if ind.Code == "" {
			return ValidationError{field + ".code", "required"}
		}
		if seen[ind.Code] {
			return ValidationError{field + ".code", fmt.Sprintf("duplicate code '%s'", ind.Code)}
		}
		seen[ind.Code] = true

		if ind.Weight <= 0 {
			return ValidationError{field + ".weight", "must be > 0"}
		}
		weightSum += ind.Weight

		switch ind.Source.Kind {
		case SourceFRED:
			if ind.Source.SeriesID == "" {
				return ValidationError{field + ".source.series_id", "required for fred source"}
			}
		case SourceYahoo:
			if ind.Source.Symbol == "" {
				return ValidationError{field + ".source.symbol", "required for yahoo source"}
			}
		case SourceScrape:
			if ind.Source.URL == "" || ind.Source.Selector == "" {
				return ValidationError{field + ".source", "url and selector required for scrape source"}
			}
		case SourceSynthetic:
			// synthetic only needs generator params
		default:
			return ValidationError{field + ".source.kind", fmt.Sprintf("unknown kind '%s'", ind.Source.Kind)}
		}

		if ind.Synthetic.Base == 0 {
			return ValidationError{field + ".synthetic.base", "required (synthetic fallback must be defined)"}
		}
		if ind.Synthetic.Min >= ind.Synthetic.Max {
			return ValidationError{field + ".synthetic", "min must be < max"}
		}
	}

	// 가중치 합은 전체 지표 집합 기준 1
	if math.Abs(weightSum-1.0) > 1e-6 {
		return ValidationError{"indicators", fmt.Sprintf("weights must sum to 1.0, got %.6f", weightSum)}
	}

	return nil
}
