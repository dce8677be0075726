package indicator

// Config는 리스크 엔진의 전체 지표 설정
// ⭐ SSOT: 지표 구성/가중치/윈도우는 이 설정에서만 읽음
type Config struct {
	Meta       Meta        `yaml:"meta" json:"meta"`
	Scoring    Scoring     `yaml:"scoring" json:"scoring"`
	Indicators []Indicator `yaml:"indicators" json:"indicators"`
}

// Meta 메타 정보
type Meta struct {
	EngineID  string `yaml:"engine_id" json:"engine_id"`
	Version   string `yaml:"version" json:"version"`
	Timezone  string `yaml:"timezone" json:"timezone"`
	DailyTime string `yaml:"daily_time" json:"daily_time"` // HH:MM, 일일 평가 시각
}

// Scoring 정규화/합성 파라미터
type Scoring struct {
	// WindowDays 롤링 z-score 윈도우 (거래일 기준 1년 = 252)
	WindowDays int `yaml:"window_days" json:"window_days"`
	// MinSamples z-score 계산에 필요한 최소 샘플 수 (2 미만이면 undefined)
	MinSamples int `yaml:"min_samples" json:"min_samples"`
	// AlertZ 경보 메시지에 "triggering indicator"로 표기할 z-score 하한
	AlertZ float64 `yaml:"alert_z" json:"alert_z"`
}

// Indicator 추적 대상 지표 하나의 정의
type Indicator struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
	Unit string `yaml:"unit" json:"unit"`

	// Weight 합성 점수 가중치. 전체 지표 합이 1이어야 함.
	Weight float64 `yaml:"weight" json:"weight"`

	// HigherIsRiskier 극성. false면 (예: 장단기 금리차) z-score 부호를 반전.
	HigherIsRiskier bool `yaml:"higher_is_riskier" json:"higher_is_riskier"`

	// CriticalThreshold 표시용 참고 임계값. 점수 계산에는 쓰지 않음.
	CriticalThreshold float64 `yaml:"critical_threshold" json:"critical_threshold"`

	Source    Source    `yaml:"source" json:"source"`
	Synthetic Synthetic `yaml:"synthetic" json:"synthetic"`
}

// Source kinds
const (
	SourceFRED      = "fred"
	SourceYahoo     = "yahoo"
	SourceScrape    = "scrape"
	SourceSynthetic = "synthetic"
)

// Source 라이브 데이터 소스 지정
// Kind가 synthetic이면 나머지 필드는 무시됨
type Source struct {
	Kind     string  `yaml:"kind" json:"kind"`
	SeriesID string  `yaml:"series_id,omitempty" json:"series_id,omitempty"` // fred
	Symbol   string  `yaml:"symbol,omitempty" json:"symbol,omitempty"`       // yahoo
	URL      string  `yaml:"url,omitempty" json:"url,omitempty"`             // scrape
	Selector string  `yaml:"selector,omitempty" json:"selector,omitempty"`   // scrape CSS selector
	Scale    float64 `yaml:"scale,omitempty" json:"scale,omitempty"`         // 단위 변환 (예: % → 소수 0.01)
}

// Synthetic 합성 생성기 파라미터 (라이브 소스 부재/실패 시 대체)
type Synthetic struct {
	Base  float64 `yaml:"base" json:"base"`
	Noise float64 `yaml:"noise" json:"noise"` // base 대비 상대 표준편차
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
}

// Indicator returns the definition for a code
func (c *Config) Indicator(code string) (Indicator, bool) {
	for _, ind := range c.Indicators {
		if ind.Code == code {
			return ind, true
		}
	}
	return Indicator{}, false
}

// Codes returns indicator codes in configured order
func (c *Config) Codes() []string {
	codes := make([]string, 0, len(c.Indicators))
	for _, ind := range c.Indicators {
		codes = append(codes, ind.Code)
	}
	return codes
}

// Weights returns the configured weight per code
func (c *Config) Weights() map[string]float64 {
	weights := make(map[string]float64, len(c.Indicators))
	for _, ind := range c.Indicators {
		weights[ind.Code] = ind.Weight
	}
	return weights
}

// Default returns the canonical five-indicator configuration
// 파일 없이 기동할 때와 테스트에서 사용
func Default() *Config {
	return &Config{
		Meta: Meta{
			EngineID:  "systemic-risk-v1",
			Version:   "1.0.0",
			Timezone:  "America/New_York",
			DailyTime: "09:30",
		},
		Scoring: Scoring{
			WindowDays: 252,
			MinSamples: 2,
			AlertZ:     1.0,
		},
		Indicators: []Indicator{
			{
				Code: "volatility-index", Name: "CBOE Volatility Index", Unit: "index",
				Weight: 0.40, HigherIsRiskier: true, CriticalThreshold: 30,
				Source:    Source{Kind: SourceYahoo, Symbol: "^VIX"},
				Synthetic: Synthetic{Base: 15.0, Noise: 0.10, Min: 10, Max: 80},
			},
			{
				Code: "bond-vol-index", Name: "ICE BofA MOVE Index", Unit: "index",
				Weight: 0.25, HigherIsRiskier: true, CriticalThreshold: 120,
				Source:    Source{Kind: SourceSynthetic},
				Synthetic: Synthetic{Base: 80.0, Noise: 0.10, Min: 50, Max: 200},
			},
			{
				Code: "interbank-spread", Name: "TED Spread", Unit: "decimal",
				Weight: 0.15, HigherIsRiskier: true, CriticalThreshold: 0.01,
				Source:    Source{Kind: SourceFRED, SeriesID: "TEDRATE", Scale: 0.01},
				Synthetic: Synthetic{Base: 0.003, Noise: 0.15, Min: 0.001, Max: 0.02},
			},
			{
				Code: "yield-curve-slope", Name: "10Y-2Y Treasury Spread", Unit: "decimal",
				Weight: 0.10, HigherIsRiskier: false, CriticalThreshold: 0,
				Source:    Source{Kind: SourceFRED, SeriesID: "T10Y2Y", Scale: 0.01},
				Synthetic: Synthetic{Base: 0.005, Noise: 0.20, Min: -0.01, Max: 0.02},
			},
			{
				Code: "credit-spread", Name: "CDX IG Spread", Unit: "decimal",
				Weight: 0.10, HigherIsRiskier: true, CriticalThreshold: 0.01,
				Source:    Source{Kind: SourceSynthetic},
				Synthetic: Synthetic{Base: 0.0065, Noise: 0.10, Min: 0.003, Max: 0.015},
			},
		},
	}
}
