package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/pkg/config"
	"github.com/wonny/riskwatch/pkg/httputil"
	"github.com/wonny/riskwatch/pkg/logger"
)

// YahooAdapter fetches daily closes from the Yahoo Finance chart API
// ⭐ SSOT: Yahoo chart API 호출은 이 어댑터에서만
type YahooAdapter struct {
	cfg       config.YahooConfig
	engineCfg *indicator.Config
	client    *httputil.Client
	logger    *logger.Logger
}

// NewYahooAdapter creates a Yahoo chart source adapter
func NewYahooAdapter(cfg config.YahooConfig, engineCfg *indicator.Config, client *httputil.Client, log *logger.Logger) *YahooAdapter {
	return &YahooAdapter{
		cfg:       cfg,
		engineCfg: engineCfg,
		client:    client,
		logger:    log,
	}
}

// Kind returns the source tag for fetched values
func (a *YahooAdapter) Kind() contracts.SourceKind {
	return contracts.SourceLive
}

// chartResponse is the subset of the chart payload the adapter reads
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the daily close of an indicator's symbol for a date
func (a *YahooAdapter) Fetch(ctx context.Context, code string, date time.Time) (float64, error) {
	ind, ok := a.engineCfg.Indicator(code)
	if !ok || ind.Source.Symbol == "" {
		return 0, fetchErr("yahoo", code, fmt.Errorf("no symbol configured"))
	}

	day := contracts.Day(date)
	period1 := day.Unix()
	period2 := day.AddDate(0, 0, 1).Unix()

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		a.cfg.BaseURL, url.PathEscape(ind.Source.Symbol), period1, period2)

	var resp chartResponse
	if err := a.client.GetJSON(ctx, fullURL, &resp); err != nil {
		return 0, fetchErr("yahoo", code, err)
	}

	if resp.Chart.Error != nil {
		return 0, fetchErr("yahoo", code, fmt.Errorf("chart error: %s", resp.Chart.Error.Description))
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return 0, fetchErr("yahoo", code, fmt.Errorf("empty chart result"))
	}

	closes := resp.Chart.Result[0].Indicators.Quote[0].Close
	var value *float64
	for _, c := range closes {
		if c != nil {
			value = c // 마지막 non-null 종가 사용
		}
	}
	if value == nil {
		return 0, fetchErr("yahoo", code, fmt.Errorf("no close for %s", day.Format("2006-01-02")))
	}

	result := *value
	if ind.Source.Scale != 0 {
		result *= ind.Source.Scale
	}

	a.logger.WithFields(map[string]interface{}{
		"code":   code,
		"symbol": ind.Source.Symbol,
		"date":   day.Format("2006-01-02"),
		"value":  result,
	}).Debug("Fetched Yahoo close")

	return result, nil
}

var _ contracts.SourceAdapter = (*YahooAdapter)(nil)
