package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/pkg/httputil"
	"github.com/wonny/riskwatch/pkg/logger"
)

// ScrapeAdapter extracts a quoted value from an HTML page via CSS selector
// JSON API가 없는 지표용 (예: 쿼트 페이지만 공개된 지수)
//
// 쿼트 페이지는 현재가만 노출하므로 오늘 날짜만 지원한다.
// 과거 날짜 요청은 ErrUnsupportedDate — 백필은 synthetic으로 구성해야 함.
type ScrapeAdapter struct {
	engineCfg *indicator.Config
	client    *httputil.Client
	logger    *logger.Logger

	now func() time.Time // 테스트 주입용
}

// NewScrapeAdapter creates an HTML quote scraper adapter
func NewScrapeAdapter(engineCfg *indicator.Config, client *httputil.Client, log *logger.Logger) *ScrapeAdapter {
	return &ScrapeAdapter{
		engineCfg: engineCfg,
		client:    client,
		logger:    log,
		now:       time.Now,
	}
}

// Kind returns the source tag for fetched values
func (a *ScrapeAdapter) Kind() contracts.SourceKind {
	return contracts.SourceLive
}

// Fetch scrapes the current quote of an indicator for today's date
func (a *ScrapeAdapter) Fetch(ctx context.Context, code string, date time.Time) (float64, error) {
	ind, ok := a.engineCfg.Indicator(code)
	if !ok || ind.Source.URL == "" || ind.Source.Selector == "" {
		return 0, fetchErr("scrape", code, fmt.Errorf("no url/selector configured"))
	}

	if !contracts.Day(date).Equal(contracts.Day(a.now())) {
		return 0, fmt.Errorf("%w: scrape source for %s only serves the current date", ErrUnsupportedDate, code)
	}

	resp, err := a.client.Get(ctx, ind.Source.URL)
	if err != nil {
		return 0, fetchErr("scrape", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return 0, fetchErr("scrape", code, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fetchErr("scrape", code, fmt.Errorf("parse HTML: %v", err))
	}

	text := strings.TrimSpace(doc.Find(ind.Source.Selector).First().Text())
	if text == "" {
		return 0, fetchErr("scrape", code, fmt.Errorf("selector %q matched nothing", ind.Source.Selector))
	}

	value, err := parseQuote(text)
	if err != nil {
		return 0, fetchErr("scrape", code, err)
	}

	if ind.Source.Scale != 0 {
		value *= ind.Source.Scale
	}

	a.logger.WithFields(map[string]interface{}{
		"code":  code,
		"url":   ind.Source.URL,
		"value": value,
	}).Debug("Scraped quote")

	return value, nil
}

// parseQuote normalizes a displayed quote ("1,234.56", "85.3bp", "0.45%")
func parseQuote(text string) (float64, error) {
	cleaned := strings.ReplaceAll(text, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "bp")
	cleaned = strings.TrimSpace(cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quote %q: %v", text, err)
	}
	return value, nil
}

var _ contracts.SourceAdapter = (*ScrapeAdapter)(nil)
