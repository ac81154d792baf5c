package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"active-etf-analyzer/internal/types"
)

func reportFixture() *Data {
	return &Data{
		Date: "20240115",
		ETFs: []types.ETFInfo{
			{Ticker: "400001", Name: "타임폴리오 코스피 액티브", Close: 10250, NAV: 10243.5, Volume: 120000, ChangePct: 0.45, Returns: 12.5},
			{Ticker: "400002", Name: "에셋플러스 글로벌대장장이 액티브", Close: 9870, NAV: 9872.1, Volume: 54000, ChangePct: -0.12, Returns: 8.25},
		},
		Consensus: []types.ConsensusRow{
			{StockName: "삼성전자", TotalWeight: 11.42, AvgWeight: 5.71, ETFCount: 2, Rank: 1},
			{StockName: "SK하이닉스", TotalWeight: 5.04, AvgWeight: 5.04, ETFCount: 1, Rank: 2},
			{StockName: "NAVER", TotalWeight: 2.75, AvgWeight: 2.75, ETFCount: 1, Rank: 3},
		},
		Diff: []types.DiffRow{
			{StockName: "NAVER", TotalWeight: 2.75, PrevWeight: 0, WeightDiff: 2.75, Status: types.StatusNew},
			{StockName: "삼성전자", TotalWeight: 11.42, PrevWeight: 11.0, WeightDiff: 0.42, Status: types.StatusMaintain},
			{StockName: "카카오", TotalWeight: 0, PrevWeight: 1.5, WeightDiff: -1.5, Status: types.StatusOut},
		},
		TopN: 2,
	}
}

func TestGenerateMarkdownReport(t *testing.T) {
	r := NewReporter(t.TempDir())

	content, err := r.GenerateReport(reportFixture(), FormatMarkdown)
	if err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	wantSections := []string{
		"# Active ETF Consensus Report — 20240115",
		"## Analyzed ETFs (2)",
		"## Top 2 Holdings by Consensus Weight",
		"## Top 2 Weight Increases vs. Previous Day",
		"## New Entries (1)",
		"## Exits (1)",
	}
	for _, s := range wantSections {
		if !strings.Contains(content, s) {
			t.Errorf("Report missing section %q", s)
		}
	}

	if !strings.Contains(content, "| 1 | 삼성전자 | 11.4200 | 5.7100 | 2 |") {
		t.Error("Report missing top consensus row")
	}
	// TopN=2 truncates the consensus table.
	if strings.Contains(content, "| 3 | NAVER") {
		t.Error("Consensus table must be truncated to top N")
	}
	if !strings.Contains(content, "etf_returns_20240115.png") {
		t.Error("Report missing chart reference")
	}
	if !strings.Contains(content, "| 카카오 | 0.0000 | 1.5000 | -1.5000 | Out |") {
		t.Error("Report missing exit row")
	}
}

func TestGenerateMarkdownReportEmptyDiff(t *testing.T) {
	r := NewReporter(t.TempDir())
	data := reportFixture()
	data.Diff = nil

	content, err := r.GenerateReport(data, FormatMarkdown)
	if err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}
	if !strings.Contains(content, "## New Entries (0)\n\nNone.") {
		t.Error("Empty diff sections should render 'None.'")
	}
}

func TestGenerateCSVReport(t *testing.T) {
	r := NewReporter(t.TempDir())

	content, err := r.GenerateReport(reportFixture(), FormatCSV)
	if err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	recs, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	if err != nil {
		t.Fatalf("Report is not valid CSV: %v", err)
	}
	// Header + 3 consensus + 3 diff rows.
	if len(recs) != 7 {
		t.Fatalf("Expected 7 records, got %d", len(recs))
	}
	if recs[1][0] != "consensus" || recs[1][1] != "삼성전자" || recs[1][2] != "11.4200" {
		t.Errorf("Unexpected first consensus record: %v", recs[1])
	}
	if recs[4][0] != "diff" || recs[4][8] != "New" {
		t.Errorf("Unexpected first diff record: %v", recs[4])
	}
}

func TestGenerateJSONReport(t *testing.T) {
	r := NewReporter(t.TempDir())

	content, err := r.GenerateReport(reportFixture(), FormatJSON)
	if err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	var decoded Data
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if decoded.Date != "20240115" || len(decoded.Consensus) != 3 || len(decoded.Diff) != 3 {
		t.Errorf("Unexpected decoded report: date=%s consensus=%d diff=%d",
			decoded.Date, len(decoded.Consensus), len(decoded.Diff))
	}
}

func TestGenerateReportUnsupportedFormat(t *testing.T) {
	r := NewReporter(t.TempDir())
	if _, err := r.GenerateReport(reportFixture(), ReportFormat("pdf")); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestSaveReportWritesChartAndFile(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(dir)

	path, err := r.SaveReport(reportFixture(), FormatMarkdown)
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	if filepath.Base(path) != "etf_report_20240115.md" {
		t.Errorf("Unexpected report filename %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Report file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "etf_returns_20240115.png")); err != nil {
		t.Errorf("Chart file missing: %v", err)
	}
}

func TestSaveReportCSVSkipsChart(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(dir)

	if _, err := r.SaveReport(reportFixture(), FormatCSV); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "etf_returns_20240115.png")); !os.IsNotExist(err) {
		t.Error("CSV report must not render a chart")
	}
}
