// Package universe selects the set of active ETFs a run analyzes:
// name-filtered, return-ranked, truncated to the configured top N.
package universe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"active-etf-analyzer/internal/interfaces"
	"active-etf-analyzer/internal/logger"
	"active-etf-analyzer/internal/types"
)

// Selector filters the full ETF list down to the analysis targets.
type Selector struct {
	provider interfaces.MarketDataProvider
	// Name substring identifying actively managed ETFs, an upstream
	// naming convention.
	ActiveMarker string
	// Lookback-return floor in percent; 0 keeps everything.
	MinReturns float64
	// Keep the top N by lookback return; 0 keeps everything.
	TopN int
	// Return window length in calendar days.
	LookbackDays int
}

// NewSelector creates a selector reading market data from provider.
func NewSelector(provider interfaces.MarketDataProvider, activeMarker string, minReturns float64, topN, lookbackDays int) *Selector {
	return &Selector{
		provider:     provider,
		ActiveMarker: activeMarker,
		MinReturns:   minReturns,
		TopN:         topN,
		LookbackDays: lookbackDays,
	}
}

// Select returns the analysis targets for date, best lookback return
// first. An empty result means the run has nothing to analyze; callers
// treat that as a "no data" outcome.
func (s *Selector) Select(ctx context.Context, date string) ([]types.ETFSelection, error) {
	tickers, err := s.provider.ETFTickers(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("universe: list ETF tickers: %w", err)
	}
	logger.Info(ctx, "Listed ETFs", "count", len(tickers), "date", date)

	active := make([]types.ETFSelection, 0, len(tickers))
	for _, ticker := range tickers {
		name, err := s.provider.ETFName(ctx, ticker)
		if err != nil {
			logger.Debug(ctx, "Skipping ticker without name", "ticker", ticker, "error", err)
			continue
		}
		if strings.Contains(name, s.ActiveMarker) {
			active = append(active, types.ETFSelection{Ticker: ticker, Name: name})
		}
	}
	logger.Info(ctx, "Filtered active ETFs", "count", len(active), "marker", s.ActiveMarker)
	if len(active) == 0 {
		return nil, nil
	}

	from, err := lookbackStart(date, s.LookbackDays)
	if err != nil {
		return nil, err
	}
	changes, err := s.provider.PriceChanges(ctx, from, date)
	if err != nil {
		return nil, fmt.Errorf("universe: fetch price changes %s..%s: %w", from, date, err)
	}

	selections := active[:0]
	for _, sel := range active {
		returns, ok := changes[sel.Ticker]
		if !ok {
			continue
		}
		sel.Returns = types.Round4(returns)
		selections = append(selections, sel)
	}

	sort.SliceStable(selections, func(i, j int) bool {
		return selections[i].Returns > selections[j].Returns
	})

	if s.MinReturns > 0 {
		kept := selections[:0]
		for _, sel := range selections {
			if sel.Returns >= s.MinReturns {
				kept = append(kept, sel)
			}
		}
		selections = kept
		logger.Info(ctx, "Applied return floor", "min_returns", s.MinReturns, "count", len(selections))
	}

	if s.TopN > 0 && len(selections) > s.TopN {
		selections = selections[:s.TopN]
		logger.Info(ctx, "Truncated to top N", "top_n", s.TopN)
	}

	for i, sel := range selections {
		if i == 10 {
			logger.Info(ctx, "More targets omitted from log", "remaining", len(selections)-10)
			break
		}
		logger.Info(ctx, "Selected ETF", "ticker", sel.Ticker, "name", sel.Name, "returns", sel.Returns)
	}

	return selections, nil
}

// lookbackStart computes the first day of the return window.
func lookbackStart(date string, days int) (string, error) {
	t, err := time.Parse(types.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("universe: invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, -days).Format(types.DateLayout), nil
}
