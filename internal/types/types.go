package types

import "math"

// DateLayout is the 8-digit date key used for snapshots, cache keys and
// provider queries (e.g. "20240115").
const DateLayout = "20060102"

// Status classifies a stock's presence change between two consecutive
// consensus snapshots.
type Status string

const (
	StatusNew      Status = "New"
	StatusOut      Status = "Out"
	StatusMaintain Status = "Maintain"
)

// Row is one raw holdings record as delivered by a provider. Column
// names are provider-dependent; the schema resolver locates the weight
// and stock-name columns.
type Row map[string]string

// RawHoldings is one ETF's holdings table on one date, read-only to the
// core. ETF ticker/name are attached at ingestion.
type RawHoldings struct {
	ETFTicker string
	ETFName   string
	Date      string
	Columns   []string
	Rows      []Row
}

// ConsensusRow is one stock's aggregate exposure across all selected
// ETFs on one date. Ranks are a dense 1..N permutation by descending
// total weight, first-occurrence order among exact ties.
type ConsensusRow struct {
	StockName   string  `json:"stock_name"`
	TotalWeight float64 `json:"total_weight"`
	AvgWeight   float64 `json:"avg_weight"`
	ETFCount    int     `json:"etf_count"`
	Rank        int     `json:"rank"`
}

// DiffRow is one stock's change between today's consensus and the most
// recent prior snapshot.
type DiffRow struct {
	StockName   string  `json:"stock_name"`
	TotalWeight float64 `json:"total_weight"`
	PrevWeight  float64 `json:"prev_weight"`
	WeightDiff  float64 `json:"weight_diff"`
	Status      Status  `json:"status"`
}

// ETFInfo carries per-ETF overview data for the report. Built by the
// provider layer, consumed by the renderer only.
type ETFInfo struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Close        float64 `json:"close"`
	NAV          float64 `json:"nav"`
	Volume       int64   `json:"volume"`
	TradingValue float64 `json:"trading_value"`
	ChangePct    float64 `json:"change_pct"`
	Returns      float64 `json:"returns"`
}

// ETFSelection is one universe-selection result: an active ETF and its
// lookback-window return.
type ETFSelection struct {
	Ticker  string
	Name    string
	Returns float64
}

// Round4 rounds to the 4-decimal precision used for all persisted and
// diffed weights.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
