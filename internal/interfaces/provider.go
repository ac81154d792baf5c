package interfaces

import (
	"context"

	"active-etf-analyzer/internal/types"
)

// MarketDataProvider yields upstream ETF market data for one exchange.
// Implementations own retries and caching; the core never talks to the
// network directly.
type MarketDataProvider interface {
	// ETFTickers lists every ETF ticker listed on the given date.
	ETFTickers(ctx context.Context, date string) ([]string, error)

	// ETFName resolves the display name for a ticker.
	ETFName(ctx context.Context, ticker string) (string, error)

	// PriceChanges returns the percent change per ticker over the
	// [fromDate, toDate] window in one bulk call.
	PriceChanges(ctx context.Context, fromDate, toDate string) (map[string]float64, error)

	// Holdings returns the ETF's holdings table for the date, or
	// (nil, nil) when the provider has no data for that ticker/date.
	Holdings(ctx context.Context, ticker, date string) (*types.RawHoldings, error)

	// Summary returns per-ETF overview data (close, NAV, volume) for the
	// date, or (nil, nil) when unavailable.
	Summary(ctx context.Context, ticker, date string) (*types.ETFInfo, error)
}
