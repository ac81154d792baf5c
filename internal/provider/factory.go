package provider

import (
	"fmt"
	"time"

	"active-etf-analyzer/internal/interfaces"
	"active-etf-analyzer/internal/provider/datasource"
	"active-etf-analyzer/internal/store"
)

// Create builds the configured market-data provider.
func Create(cfg *store.Config) (interfaces.MarketDataProvider, error) {
	switch cfg.Data.Source {
	case "KRX":
		retrier := datasource.NewRetrier(cfg.Retry.MaxAttempts, time.Duration(cfg.Retry.DelaySeconds)*time.Second)
		cache := datasource.NewCache(cfg.Data.CacheDir, time.Duration(cfg.Data.CacheTTLHours)*time.Hour)
		return datasource.NewKRXClient(retrier, cache), nil
	case "MOCK":
		return datasource.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Data.Source)
	}
}
