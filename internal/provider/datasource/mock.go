package datasource

import (
	"context"
	"fmt"

	"active-etf-analyzer/internal/types"
)

// MockProvider serves deterministic canned data for tests and
// `data.source: MOCK` runs. No network access.
type MockProvider struct {
	Tickers  map[string][]string             // date -> tickers
	Names    map[string]string               // ticker -> name
	Changes  map[string]float64              // ticker -> window return
	Tables   map[string]*types.RawHoldings   // ticker -> holdings
	Sheets   map[string]*types.ETFInfo       // ticker -> summary
	CallsLog []string
}

// NewMockProvider returns a mock with a small built-in universe: two
// active ETFs sharing one stock plus one passive index ETF.
func NewMockProvider() *MockProvider {
	m := &MockProvider{
		Names: map[string]string{
			"400001": "타임폴리오 코스피 액티브",
			"400002": "에셋플러스 글로벌대장장이 액티브",
			"400003": "KODEX 200",
		},
		Changes: map[string]float64{
			"400001": 12.5,
			"400002": 8.25,
			"400003": 3.1,
		},
	}
	return m
}

// ETFTickers lists the mock tickers regardless of date unless a
// per-date override is set.
func (m *MockProvider) ETFTickers(ctx context.Context, date string) ([]string, error) {
	m.record("ETFTickers", date)
	if t, ok := m.Tickers[date]; ok {
		return t, nil
	}
	return []string{"400001", "400002", "400003"}, nil
}

// ETFName resolves a mock ticker name.
func (m *MockProvider) ETFName(ctx context.Context, ticker string) (string, error) {
	m.record("ETFName", ticker)
	name, ok := m.Names[ticker]
	if !ok {
		return "", fmt.Errorf("mock: unknown ticker %s", ticker)
	}
	return name, nil
}

// PriceChanges returns the canned window returns.
func (m *MockProvider) PriceChanges(ctx context.Context, fromDate, toDate string) (map[string]float64, error) {
	m.record("PriceChanges", fromDate, toDate)
	out := make(map[string]float64, len(m.Changes))
	for k, v := range m.Changes {
		out[k] = v
	}
	return out, nil
}

// Holdings returns the canned holdings table for the ticker.
func (m *MockProvider) Holdings(ctx context.Context, ticker, date string) (*types.RawHoldings, error) {
	m.record("Holdings", ticker, date)
	if m.Tables != nil {
		return m.Tables[ticker], nil
	}
	return defaultHoldings(ticker, m.Names[ticker], date), nil
}

// Summary returns the canned market sheet row.
func (m *MockProvider) Summary(ctx context.Context, ticker, date string) (*types.ETFInfo, error) {
	m.record("Summary", ticker, date)
	if m.Sheets != nil {
		return m.Sheets[ticker], nil
	}
	return &types.ETFInfo{
		Ticker:       ticker,
		Name:         m.Names[ticker],
		Close:        10250,
		NAV:          10243.5,
		Volume:       120000,
		TradingValue: 1.23e9,
		ChangePct:    0.45,
	}, nil
}

func (m *MockProvider) record(call string, args ...string) {
	m.CallsLog = append(m.CallsLog, call+"("+fmt.Sprint(args)+")")
}

func defaultHoldings(ticker, name, date string) *types.RawHoldings {
	rows := []types.Row{
		{"종목코드": "005930", "종목명": "삼성전자", "평가금액": "5200000", "비중": "8.1200"},
		{"종목코드": "000660", "종목명": "SK하이닉스", "평가금액": "3100000", "비중": "5.0400"},
	}
	if ticker == "400002" {
		rows = []types.Row{
			{"종목코드": "005930", "종목명": "삼성전자", "평가금액": "2100000", "비중": "3.3000"},
			{"종목코드": "035420", "종목명": "NAVER", "평가금액": "1700000", "비중": "2.7500"},
		}
	}
	return &types.RawHoldings{
		ETFTicker: ticker,
		ETFName:   name,
		Date:      date,
		Columns:   []string{"종목코드", "종목명", "평가금액", "비중"},
		Rows:      rows,
	}
}
