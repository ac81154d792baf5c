package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"active-etf-analyzer/internal/analysis"
	"active-etf-analyzer/internal/interfaces"
	"active-etf-analyzer/internal/logger"
	"active-etf-analyzer/internal/provider"
	"active-etf-analyzer/internal/provider/datasource"
	"active-etf-analyzer/internal/report"
	"active-etf-analyzer/internal/schema"
	"active-etf-analyzer/internal/snapshot"
	"active-etf-analyzer/internal/store"
	"active-etf-analyzer/internal/types"
	"active-etf-analyzer/internal/universe"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	date := flag.String("date", "", "analysis date (YYYYMMDD), default today")
	topN := flag.Int("top-n", -1, "override: keep top N ETFs by window return")
	minReturns := flag.Float64("min-returns", -1, "override: minimum window return (%)")
	format := flag.String("format", "", "report format: markdown, csv, or json")
	outputFile := flag.String("output", "", "write report to this file instead of the report directory")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *topN >= 0 {
		cfg.Filter.TopN = *topN
	}
	if *minReturns >= 0 {
		cfg.Filter.MinReturns = *minReturns
	}
	if *format != "" {
		cfg.Report.Format = *format
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	defer logger.Shutdown(ctx)

	runDate := *date
	if runDate == "" {
		runDate = time.Now().Format(types.DateLayout)
	} else if _, err := time.Parse(types.DateLayout, runDate); err != nil {
		logger.Error(ctx, "Invalid -date, expected YYYYMMDD", "date", runDate)
		os.Exit(1)
	}

	if err := run(ctx, cfg, runDate, *outputFile); err != nil {
		logger.ErrorWithErr(ctx, "Run failed", err, "date", runDate)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *store.Config, date, outputFile string) error {
	op := logger.StartOperation(ctx, "daily_run", "date", date)
	ctx = op.GetContext()
	logger.Info(ctx, "Active ETF analyzer starting", "date", date, "source", cfg.Data.Source)

	// Step 1: previous day's snapshot.
	snapStore := snapshot.NewStore(cfg.Data.Dir)
	prev, havePrev, err := snapStore.Load(date)
	if err != nil {
		op.EndWithError(err)
		return fmt.Errorf("load previous snapshot: %w", err)
	}
	if havePrev {
		logger.Info(ctx, "Loaded previous snapshot", "stocks", len(prev))
	} else {
		logger.Info(ctx, "No previous snapshot, treating every stock as new")
	}

	// Step 2: select the active ETF universe.
	prov, err := provider.Create(cfg)
	if err != nil {
		op.EndWithError(err)
		return fmt.Errorf("create provider: %w", err)
	}
	selector := universe.NewSelector(prov, cfg.Filter.ActiveMarker, cfg.Filter.MinReturns, cfg.Filter.TopN, cfg.Filter.LookbackDays)
	selections, err := selector.Select(ctx, date)
	if err != nil {
		op.EndWithError(err)
		return fmt.Errorf("select universe: %w", err)
	}
	if len(selections) == 0 {
		logger.Warn(ctx, "No target ETFs for date, nothing to analyze", "date", date)
		op.End("outcome", "no_data")
		return nil
	}
	logger.Info(ctx, "Selected analysis targets", "count", len(selections))

	// Step 3: collect holdings per ETF, with the scrape fallback when
	// the primary source is empty.
	var naver *datasource.NaverScraper
	if cfg.Naver.Enabled {
		naver = datasource.NewNaverScraper(30 * time.Second)
	}
	holdings := collectHoldings(ctx, prov, naver, selections, date)
	if len(holdings) == 0 {
		logger.Warn(ctx, "No holdings data collected", "date", date)
		op.End("outcome", "no_data")
		return nil
	}

	// Step 4: aggregate and diff.
	resolver := schema.NewResolver(cfg.Schema.WeightColumns, cfg.Schema.NameColumns, cfg.Schema.AmountColumn)
	analyzer := analysis.New(resolver)
	consensus, diff := analyzer.Analyze(ctx, holdings, prev)
	if len(consensus) == 0 {
		logger.Warn(ctx, "Analysis produced no data", "date", date)
		op.End("outcome", "no_data")
		return nil
	}
	logSummary(ctx, consensus, diff)

	// Step 5: render the report.
	cache := datasource.NewCache(cfg.Data.CacheDir, time.Duration(cfg.Data.CacheTTLHours)*time.Hour)
	infos, err := provider.CollectETFInfo(ctx, prov, cache, selections, date)
	if err != nil {
		logger.Warn(ctx, "Could not assemble ETF overview, report will omit it", "error", err)
	}
	data := &report.Data{
		Date:      date,
		ETFs:      infos,
		Consensus: consensus,
		Diff:      diff,
		TopN:      cfg.Report.TopN,
	}
	reporter := report.NewReporter(cfg.Report.OutputDir)
	reportFormat := report.ReportFormat(cfg.Report.Format)
	if outputFile != "" {
		content, err := reporter.GenerateReport(data, reportFormat)
		if err != nil {
			op.EndWithError(err)
			return fmt.Errorf("generate report: %w", err)
		}
		if err := os.WriteFile(outputFile, []byte(content), 0o644); err != nil {
			op.EndWithError(err)
			return fmt.Errorf("write report %s: %w", outputFile, err)
		}
		logger.Info(ctx, "Report written", "path", outputFile)
	} else {
		path, err := reporter.SaveReport(data, reportFormat)
		if err != nil {
			op.EndWithError(err)
			return fmt.Errorf("save report: %w", err)
		}
		logger.Info(ctx, "Report written", "path", path)
	}

	// Step 6: persist today's consensus for tomorrow's diff. The run
	// cannot conclude safely without it.
	path, err := snapStore.Save(consensus, date)
	if err != nil {
		op.EndWithError(err)
		return fmt.Errorf("save snapshot for %s: %w", date, err)
	}
	logger.Info(ctx, "Snapshot saved", "path", path)

	op.End("stocks", len(consensus))
	logger.Info(ctx, "Active ETF analyzer finished", "date", date)
	return nil
}

func collectHoldings(ctx context.Context, prov interfaces.MarketDataProvider, naver *datasource.NaverScraper, selections []types.ETFSelection, date string) []types.RawHoldings {
	var holdings []types.RawHoldings
	for i, sel := range selections {
		logger.Info(ctx, "Fetching holdings", "ticker", sel.Ticker, "progress", fmt.Sprintf("%d/%d", i+1, len(selections)))
		table, err := prov.Holdings(ctx, sel.Ticker, date)
		if err != nil {
			logger.ErrorWithErr(ctx, "Holdings fetch failed", err, "ticker", sel.Ticker)
			table = nil
		}
		if table == nil && naver != nil {
			table, err = naver.Holdings(ctx, sel.Ticker, date)
			if err != nil {
				logger.Warn(ctx, "Fallback holdings fetch failed", "ticker", sel.Ticker, "error", err)
				table = nil
			}
		}
		if table == nil || len(table.Rows) == 0 {
			logger.Warn(ctx, "No holdings for ETF", "ticker", sel.Ticker)
			continue
		}
		if table.ETFName == "" {
			table.ETFName = sel.Name
		}
		holdings = append(holdings, *table)
		logger.Info(ctx, "Holdings fetched", "ticker", sel.Ticker, "rows", len(table.Rows))
	}
	return holdings
}

func logSummary(ctx context.Context, consensus []types.ConsensusRow, diff []types.DiffRow) {
	logger.Info(ctx, "Analysis summary", "stocks", len(consensus))
	for _, row := range analysis.TopHoldings(consensus, 5) {
		logger.Info(ctx, "Top holding", "stock", row.StockName, "total_weight", row.TotalWeight, "etfs", row.ETFCount)
	}
	logger.Info(ctx, "Day-over-day changes",
		"new", len(analysis.NewEntries(diff)),
		"out", len(analysis.Exits(diff)))
}
