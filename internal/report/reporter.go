// Package report renders the daily analysis result to a file. It
// consumes the consensus/diff tables and the query views only; it never
// re-derives aggregation logic.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"active-etf-analyzer/internal/analysis"
	"active-etf-analyzer/internal/types"
)

// ReportFormat specifies the output format for daily reports
type ReportFormat string

const (
	FormatMarkdown ReportFormat = "markdown"
	FormatCSV      ReportFormat = "csv"
	FormatJSON     ReportFormat = "json"
)

// extensions maps formats to file suffixes.
var extensions = map[ReportFormat]string{
	FormatMarkdown: "md",
	FormatCSV:      "csv",
	FormatJSON:     "json",
}

// Data is everything one report needs.
type Data struct {
	Date      string               `json:"date"`
	ETFs      []types.ETFInfo      `json:"etfs"`
	Consensus []types.ConsensusRow `json:"consensus"`
	Diff      []types.DiffRow      `json:"diff"`
	TopN      int                  `json:"top_n"`
}

// Reporter handles generation and storage of daily reports
type Reporter struct {
	outputDir string
}

// NewReporter creates a new reporter
func NewReporter(outputDir string) *Reporter {
	return &Reporter{
		outputDir: outputDir,
	}
}

// GenerateReport creates a report in the specified format
func (r *Reporter) GenerateReport(data *Data, format ReportFormat) (string, error) {
	switch format {
	case FormatMarkdown:
		return r.generateMarkdownReport(data)
	case FormatCSV:
		return r.generateCSVReport(data)
	case FormatJSON:
		return r.generateJSONReport(data)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// SaveReport renders the report to disk and, for markdown, the returns
// chart next to it. Returns the report path.
func (r *Reporter) SaveReport(data *Data, format ReportFormat) (string, error) {
	content, err := r.GenerateReport(data, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", err
	}

	if format == FormatMarkdown && len(data.ETFs) > 0 {
		chartPath := filepath.Join(r.outputDir, chartFilename(data.Date))
		if err := RenderReturnsChart(data.ETFs, data.Date, chartPath); err != nil {
			return "", fmt.Errorf("render returns chart: %w", err)
		}
	}

	filename := fmt.Sprintf("etf_report_%s.%s", data.Date, extensions[format])
	path := filepath.Join(r.outputDir, filename)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}

	return path, nil
}

func (r *Reporter) generateJSONReport(data *Data) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reporter) generateMarkdownReport(data *Data) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Active ETF Consensus Report — %s\n\n", data.Date)

	fmt.Fprintf(&sb, "## Analyzed ETFs (%d)\n\n", len(data.ETFs))
	if len(data.ETFs) > 0 {
		sb.WriteString("| Ticker | Name | Close | NAV | Volume | Day % | Window % |\n")
		sb.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
		for _, e := range data.ETFs {
			fmt.Fprintf(&sb, "| %s | %s | %.0f | %.2f | %d | %+.2f | %+.2f |\n",
				e.Ticker, e.Name, e.Close, e.NAV, e.Volume, e.ChangePct, e.Returns)
		}
		fmt.Fprintf(&sb, "\n![Window returns](%s)\n", chartFilename(data.Date))
	}
	sb.WriteString("\n")

	top := analysis.TopHoldings(data.Consensus, data.TopN)
	fmt.Fprintf(&sb, "## Top %d Holdings by Consensus Weight\n\n", len(top))
	sb.WriteString("| Rank | Stock | Total Weight % | Avg Weight % | ETFs |\n")
	sb.WriteString("|---:|---|---:|---:|---:|\n")
	for _, row := range top {
		fmt.Fprintf(&sb, "| %d | %s | %.4f | %.4f | %d |\n",
			row.Rank, row.StockName, row.TotalWeight, row.AvgWeight, row.ETFCount)
	}
	sb.WriteString("\n")

	increases := analysis.TopIncreases(data.Diff, data.TopN)
	fmt.Fprintf(&sb, "## Top %d Weight Increases vs. Previous Day\n\n", len(increases))
	writeDiffTable(&sb, increases)

	entries := analysis.NewEntries(data.Diff)
	fmt.Fprintf(&sb, "## New Entries (%d)\n\n", len(entries))
	writeDiffTable(&sb, entries)

	exits := analysis.Exits(data.Diff)
	fmt.Fprintf(&sb, "## Exits (%d)\n\n", len(exits))
	writeDiffTable(&sb, exits)

	return sb.String(), nil
}

func writeDiffTable(sb *strings.Builder, rows []types.DiffRow) {
	if len(rows) == 0 {
		sb.WriteString("None.\n\n")
		return
	}
	sb.WriteString("| Stock | Today % | Previous % | Delta | Status |\n")
	sb.WriteString("|---|---:|---:|---:|---|\n")
	for _, row := range rows {
		fmt.Fprintf(sb, "| %s | %.4f | %.4f | %+.4f | %s |\n",
			row.StockName, row.TotalWeight, row.PrevWeight, row.WeightDiff, row.Status)
	}
	sb.WriteString("\n")
}

func (r *Reporter) generateCSVReport(data *Data) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write([]string{"section", "stock_name", "total_weight", "avg_weight", "etf_count", "rank", "prev_weight", "weight_diff", "status"}); err != nil {
		return "", err
	}
	for _, row := range data.Consensus {
		rec := []string{
			"consensus", row.StockName,
			strconv.FormatFloat(row.TotalWeight, 'f', 4, 64),
			strconv.FormatFloat(row.AvgWeight, 'f', 4, 64),
			strconv.Itoa(row.ETFCount), strconv.Itoa(row.Rank),
			"", "", "",
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	for _, row := range data.Diff {
		rec := []string{
			"diff", row.StockName,
			strconv.FormatFloat(row.TotalWeight, 'f', 4, 64),
			"", "", "",
			strconv.FormatFloat(row.PrevWeight, 'f', 4, 64),
			strconv.FormatFloat(row.WeightDiff, 'f', 4, 64),
			string(row.Status),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func chartFilename(date string) string {
	return fmt.Sprintf("etf_returns_%s.png", date)
}
