package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/pkg/config"
	"github.com/wonny/riskwatch/pkg/httputil"
	"github.com/wonny/riskwatch/pkg/logger"
)

// FREDAdapter fetches series observations from the St. Louis Fed API
// ⭐ SSOT: FRED API 호출은 이 어댑터에서만
type FREDAdapter struct {
	cfg       config.FREDConfig
	engineCfg *indicator.Config
	client    *httputil.Client
	logger    *logger.Logger
}

// NewFREDAdapter creates a FRED source adapter
func NewFREDAdapter(cfg config.FREDConfig, engineCfg *indicator.Config, client *httputil.Client, log *logger.Logger) *FREDAdapter {
	return &FREDAdapter{
		cfg:       cfg,
		engineCfg: engineCfg,
		client:    client,
		logger:    log,
	}
}

// Kind returns the source tag for fetched values
func (a *FREDAdapter) Kind() contracts.SourceKind {
	return contracts.SourceLive
}

// observationsResponse is the FRED series/observations payload
type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Fetch returns the observation of an indicator's FRED series for a date
func (a *FREDAdapter) Fetch(ctx context.Context, code string, date time.Time) (float64, error) {
	ind, ok := a.engineCfg.Indicator(code)
	if !ok || ind.Source.SeriesID == "" {
		return 0, fetchErr("fred", code, fmt.Errorf("no series configured"))
	}
	if a.cfg.APIKey == "" {
		return 0, fetchErr("fred", code, fmt.Errorf("FRED_API_KEY missing"))
	}

	day := date.Format("2006-01-02")
	query := url.Values{}
	query.Set("series_id", ind.Source.SeriesID)
	query.Set("api_key", a.cfg.APIKey)
	query.Set("file_type", "json")
	query.Set("observation_start", day)
	query.Set("observation_end", day)

	fullURL := fmt.Sprintf("%s/series/observations?%s", a.cfg.BaseURL, query.Encode())

	var resp observationsResponse
	if err := a.client.GetJSON(ctx, fullURL, &resp); err != nil {
		return 0, fetchErr("fred", code, err)
	}

	if len(resp.Observations) == 0 {
		return 0, fetchErr("fred", code, fmt.Errorf("no observation for %s", day))
	}

	raw := resp.Observations[len(resp.Observations)-1].Value
	if raw == "." {
		// FRED marks missing datapoints with "."
		return 0, fetchErr("fred", code, fmt.Errorf("missing datapoint for %s", day))
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fetchErr("fred", code, fmt.Errorf("parse value %q: %v", raw, err))
	}

	if ind.Source.Scale != 0 {
		value *= ind.Source.Scale
	}

	a.logger.WithFields(map[string]interface{}{
		"code":   code,
		"series": ind.Source.SeriesID,
		"date":   day,
		"value":  value,
	}).Debug("Fetched FRED observation")

	return value, nil
}

var _ contracts.SourceAdapter = (*FREDAdapter)(nil)
