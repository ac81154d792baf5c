// KRX market-data client.
package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"active-etf-analyzer/internal/types"
)

const (
	defaultBaseURL = "http://data.krx.co.kr"
	jsonDataPath   = "/comm/bldAttendant/getJsonData.cmd"

	// KRX screen identifiers. Each maps to one statistics screen of the
	// market-data portal.
	bldETFList     = "dbms/MDC/STAT/standard/MDCSTAT04301" // all ETFs, one day
	bldPriceChange = "dbms/MDC/STAT/standard/MDCSTAT04401" // fluctuation rate over a window
	bldPortfolio   = "dbms/MDC/STAT/standard/MDCSTAT04601" // portfolio deposit file
)

// Client handles KRX market-data API interactions. Responses are cached
// on disk and calls are retried through the shared retrier.
type KRXClient struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	retrier    *Retrier
	cache      *Cache

	mu   sync.Mutex
	days map[string]*marketDay
}

// NewKRXClient creates a KRX client.
func NewKRXClient(retrier *Retrier, cache *Cache) *KRXClient {
	return &KRXClient{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			"Referer":    "http://data.krx.co.kr/contents/MDC/MDI/mdiLoader",
		},
		retrier: retrier,
		cache:   cache,
		days:    map[string]*marketDay{},
	}
}

// marketDay is one day's full ETF market sheet, memoized per date.
type marketDay struct {
	order []string
	rows  map[string]marketRow
}

type marketRow struct {
	Ticker     string `json:"ISU_SRT_CD"`
	Name       string `json:"ISU_ABBRV"`
	Close      string `json:"TDD_CLSPRC"`
	Open       string `json:"TDD_OPNPRC"`
	NAV        string `json:"NAV"`
	ChangeRate string `json:"FLUC_RT"`
	Volume     string `json:"ACC_TRDVOL"`
	Value      string `json:"ACC_TRDVAL"`
}

type holdingRow struct {
	Code   string `json:"COMPST_ISU_CD"`
	Name   string `json:"COMPST_ISU_NM"`
	Shares string `json:"COMPST_ISU_CU1_SHRS"`
	Amount string `json:"VALU_AMT"`
	Weight string `json:"COMPST_RTO"`
}

// ETFTickers lists every ETF ticker on the date, exchange order.
func (c *KRXClient) ETFTickers(ctx context.Context, date string) ([]string, error) {
	day, err := c.ensureDay(ctx, date)
	if err != nil {
		return nil, err
	}
	tickers := make([]string, len(day.order))
	copy(tickers, day.order)
	return tickers, nil
}

// ETFName resolves a ticker's display name from the memoized market
// sheets. ETFTickers must have been called for at least one date first.
func (c *KRXClient) ETFName(ctx context.Context, ticker string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, day := range c.days {
		if row, ok := day.rows[ticker]; ok {
			return row.Name, nil
		}
	}
	return "", fmt.Errorf("krx: no name for ticker %s", ticker)
}

// PriceChanges returns the percent change per ticker over the window in
// one bulk call.
func (c *KRXClient) PriceChanges(ctx context.Context, fromDate, toDate string) (map[string]float64, error) {
	data, err := c.fetch(ctx, bldPriceChange, map[string]string{
		"strtDd": fromDate,
		"endDd":  toDate,
	})
	if err != nil {
		return nil, fmt.Errorf("krx: fetch price changes: %w", err)
	}

	var out struct {
		Rows []struct {
			Ticker     string `json:"ISU_SRT_CD"`
			ChangeRate string `json:"FLUC_RT"`
		} `json:"output"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("krx: decode price changes: %w", err)
	}

	changes := make(map[string]float64, len(out.Rows))
	for _, row := range out.Rows {
		if v, ok := parseNumber(row.ChangeRate); ok {
			changes[row.Ticker] = v
		}
	}
	return changes, nil
}

// Holdings returns the ETF's portfolio deposit file for the date with
// the provider's raw Korean column names, or (nil, nil) when the
// provider has no data.
func (c *KRXClient) Holdings(ctx context.Context, ticker, date string) (*types.RawHoldings, error) {
	data, err := c.fetch(ctx, bldPortfolio, map[string]string{
		"trdDd": date,
		"isuCd": ticker,
	})
	if err != nil {
		return nil, fmt.Errorf("krx: fetch holdings for %s: %w", ticker, err)
	}

	var out struct {
		Rows []holdingRow `json:"output"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("krx: decode holdings for %s: %w", ticker, err)
	}
	if len(out.Rows) == 0 {
		return nil, nil
	}

	name, err := c.ETFName(ctx, ticker)
	if err != nil {
		name = ticker
	}

	holdings := &types.RawHoldings{
		ETFTicker: ticker,
		ETFName:   name,
		Date:      date,
		Columns:   []string{"종목코드", "종목명", "계약수", "평가금액", "비중"},
	}
	for _, row := range out.Rows {
		holdings.Rows = append(holdings.Rows, types.Row{
			"종목코드": row.Code,
			"종목명":  row.Name,
			"계약수":  row.Shares,
			"평가금액": row.Amount,
			"비중":   row.Weight,
		})
	}
	return holdings, nil
}

// Summary returns the ETF's market sheet row for the date, or
// (nil, nil) when the ticker did not trade.
func (c *KRXClient) Summary(ctx context.Context, ticker, date string) (*types.ETFInfo, error) {
	day, err := c.ensureDay(ctx, date)
	if err != nil {
		return nil, err
	}
	row, ok := day.rows[ticker]
	if !ok {
		return nil, nil
	}

	closePrice, _ := parseNumber(row.Close)
	openPrice, _ := parseNumber(row.Open)
	nav, _ := parseNumber(row.NAV)
	if nav == 0 {
		nav = closePrice
	}
	volume, _ := parseNumber(row.Volume)
	value, _ := parseNumber(row.Value)

	// Day change: (close - open) / open * 100.
	changePct := 0.0
	if openPrice > 0 {
		changePct = types.Round4((closePrice - openPrice) / openPrice * 100)
	}

	return &types.ETFInfo{
		Ticker:       ticker,
		Name:         row.Name,
		Close:        closePrice,
		NAV:          nav,
		Volume:       int64(volume),
		TradingValue: value,
		ChangePct:    changePct,
	}, nil
}

// ensureDay fetches and memoizes the full ETF market sheet for a date.
func (c *KRXClient) ensureDay(ctx context.Context, date string) (*marketDay, error) {
	c.mu.Lock()
	if day, ok := c.days[date]; ok {
		c.mu.Unlock()
		return day, nil
	}
	c.mu.Unlock()

	data, err := c.fetch(ctx, bldETFList, map[string]string{
		"trdDd": date,
	})
	if err != nil {
		return nil, fmt.Errorf("krx: fetch ETF list: %w", err)
	}

	var out struct {
		Rows []marketRow `json:"output"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("krx: decode ETF list: %w", err)
	}

	day := &marketDay{rows: make(map[string]marketRow, len(out.Rows))}
	for _, row := range out.Rows {
		if row.Ticker == "" {
			continue
		}
		day.order = append(day.order, row.Ticker)
		day.rows[row.Ticker] = row
	}

	c.mu.Lock()
	c.days[date] = day
	c.mu.Unlock()
	return day, nil
}

// fetch posts one screen request, going through the disk cache and the
// retrier.
func (c *KRXClient) fetch(ctx context.Context, bld string, params map[string]string) ([]byte, error) {
	key := cacheKey(bld, params)
	return c.cache.GetOrFetch(key, func() ([]byte, error) {
		var data []byte
		err := c.retrier.Do(ctx, bld, func() error {
			var reqErr error
			data, reqErr = c.makeRequest(ctx, bld, params)
			return reqErr
		})
		return data, err
	})
}

func (c *KRXClient) makeRequest(ctx context.Context, bld string, params map[string]string) ([]byte, error) {
	form := url.Values{}
	form.Set("bld", bld)
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+jsonDataPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KRX API returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func cacheKey(bld string, params map[string]string) string {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, "krx", bld)
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return MakeKey(parts...)
}

// parseNumber parses a numeric field, tolerating thousands separators.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
