package provider

import (
	"context"
	"encoding/json"

	"active-etf-analyzer/internal/interfaces"
	"active-etf-analyzer/internal/logger"
	"active-etf-analyzer/internal/provider/datasource"
	"active-etf-analyzer/internal/types"
)

// CollectETFInfo assembles the per-ETF overview rows for the report.
// The assembled table is cached under a content-addressed key (sorted,
// deduplicated ticker set plus date), so a rerun for the same selection
// skips the per-ticker summary calls.
func CollectETFInfo(ctx context.Context, p interfaces.MarketDataProvider, cache *datasource.Cache, selections []types.ETFSelection, date string) ([]types.ETFInfo, error) {
	tickers := make([]string, 0, len(selections))
	for _, sel := range selections {
		tickers = append(tickers, sel.Ticker)
	}
	key := datasource.KeyForTickers(date, tickers)

	data, err := cache.GetOrFetch(key, func() ([]byte, error) {
		infos := collect(ctx, p, selections, date)
		return json.Marshal(infos)
	})
	if err != nil {
		return nil, err
	}

	var infos []types.ETFInfo
	if err := json.Unmarshal(data, &infos); err != nil {
		// A corrupt cache entry is not worth failing the run over.
		logger.Warn(ctx, "Discarding unreadable ETF info cache entry", "key", key, "error", err)
		cache.Delete(key)
		return collect(ctx, p, selections, date), nil
	}
	return infos, nil
}

func collect(ctx context.Context, p interfaces.MarketDataProvider, selections []types.ETFSelection, date string) []types.ETFInfo {
	infos := make([]types.ETFInfo, 0, len(selections))
	for _, sel := range selections {
		info, err := p.Summary(ctx, sel.Ticker, date)
		if err != nil {
			logger.Warn(ctx, "Skipping ETF summary", "ticker", sel.Ticker, "error", err)
			continue
		}
		if info == nil {
			continue
		}
		info.Returns = sel.Returns
		if info.Name == "" {
			info.Name = sel.Name
		}
		infos = append(infos, *info)
	}
	return infos
}
