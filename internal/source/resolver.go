package source

import (
	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/pkg/config"
	"github.com/wonny/riskwatch/pkg/httputil"
	"github.com/wonny/riskwatch/pkg/logger"
)

// Resolver binds each indicator code to one source adapter
// ⭐ SSOT: 라이브/합성 선택은 기동 시 한 번만 결정. 실행 중 임의 전환 금지.
type Resolver struct {
	engineCfg *indicator.Config
	adapters  map[string]contracts.SourceAdapter
	synthetic *SyntheticAdapter
	logger    *logger.Logger
}

// NewResolver resolves the adapter for every configured indicator.
// 라이브 소스가 설정되어 있어도 자격 정보가 없으면 synthetic으로 내려간다.
func NewResolver(cfg *config.Config, engineCfg *indicator.Config, client *httputil.Client, log *logger.Logger) *Resolver {
	synthetic := NewSyntheticAdapter(engineCfg, log)
	fred := NewFREDAdapter(cfg.FRED, engineCfg, client, log)
	yahoo := NewYahooAdapter(cfg.Yahoo, engineCfg, client, log)
	scrape := NewScrapeAdapter(engineCfg, client, log)

	adapters := make(map[string]contracts.SourceAdapter, len(engineCfg.Indicators))
	for _, ind := range engineCfg.Indicators {
		var adapter contracts.SourceAdapter

		switch ind.Source.Kind {
		case indicator.SourceFRED:
			if cfg.FRED.APIKey == "" {
				log.WithField("code", ind.Code).
					Warn("FRED_API_KEY missing, falling back to synthetic source")
				adapter = synthetic
			} else {
				adapter = fred
			}
		case indicator.SourceYahoo:
			adapter = yahoo
		case indicator.SourceScrape:
			adapter = scrape
		default:
			adapter = synthetic
		}

		adapters[ind.Code] = adapter
		log.WithFields(map[string]interface{}{
			"code": ind.Code,
			"kind": adapter.Kind(),
		}).Debug("Resolved indicator source")
	}

	return &Resolver{
		engineCfg: engineCfg,
		adapters:  adapters,
		synthetic: synthetic,
		logger:    log,
	}
}

// AdapterFor returns the resolved adapter for an indicator code
func (r *Resolver) AdapterFor(code string) (contracts.SourceAdapter, bool) {
	adapter, ok := r.adapters[code]
	return adapter, ok
}

// Fallback returns the synthetic stand-in for an indicator, when its
// config carries synthetic parameters. 라이브 수집 실패 시 엔진이 사용.
func (r *Resolver) Fallback(code string) (contracts.SourceAdapter, bool) {
	ind, ok := r.engineCfg.Indicator(code)
	if !ok || ind.Synthetic.Base == 0 {
		return nil, false
	}
	return r.synthetic, true
}
