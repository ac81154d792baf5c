package report

import (
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"active-etf-analyzer/internal/types"
)

var (
	gainColor = drawing.Color{R: 231, G: 76, B: 60, A: 255}
	lossColor = drawing.Color{R: 52, G: 152, B: 219, A: 255}
)

// RenderReturnsChart writes a PNG bar chart of each analyzed ETF's
// lookback-window return. Bars are ordered worst to best; gains are
// drawn red and losses blue, the local market convention.
func RenderReturnsChart(etfs []types.ETFInfo, date, path string) error {
	sorted := make([]types.ETFInfo, len(etfs))
	copy(sorted, etfs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Returns < sorted[j].Returns
	})

	bars := make([]chart.Value, 0, len(sorted))
	for _, e := range sorted {
		color := gainColor
		if e.Returns < 0 {
			color = lossColor
		}
		bars = append(bars, chart.Value{
			// Tickers label more reliably than Hangul names with the
			// built-in font.
			Label: e.Ticker,
			Value: e.Returns,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	graph := chart.BarChart{
		Title:    "Active ETF window returns (" + date + ")",
		Height:   512,
		BarWidth: 28,
		YAxis: chart.YAxis{
			Name: "return %",
		},
		Bars: bars,
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return graph.Render(chart.PNG, f)
}
