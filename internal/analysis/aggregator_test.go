package analysis

import (
	"context"
	"math"
	"reflect"
	"strconv"
	"testing"

	"active-etf-analyzer/internal/schema"
	"active-etf-analyzer/internal/types"
)

func testAggregator() *Aggregator {
	return NewAggregator(schema.NewResolver(nil, nil, ""))
}

func holdingsFixture() []types.RawHoldings {
	return []types.RawHoldings{
		{
			ETFTicker: "400001",
			ETFName:   "ETF A",
			Date:      "20240115",
			Columns:   []string{"종목명", "비중"},
			Rows: []types.Row{
				{"종목명": "StockX", "비중": "5"},
				{"종목명": "StockY", "비중": "3"},
			},
		},
		{
			ETFTicker: "400002",
			ETFName:   "ETF B",
			Date:      "20240115",
			Columns:   []string{"종목명", "비중"},
			Rows: []types.Row{
				{"종목명": "StockX", "비중": "2"},
			},
		},
	}
}

func TestAggregateScenario(t *testing.T) {
	consensus := testAggregator().Aggregate(context.Background(), holdingsFixture())

	if len(consensus) != 2 {
		t.Fatalf("Expected 2 consensus rows, got %d", len(consensus))
	}

	x := consensus[0]
	if x.StockName != "StockX" || x.TotalWeight != 7 || x.AvgWeight != 3.5 || x.ETFCount != 2 || x.Rank != 1 {
		t.Errorf("Unexpected StockX row: %+v", x)
	}
	y := consensus[1]
	if y.StockName != "StockY" || y.TotalWeight != 3 || y.AvgWeight != 3 || y.ETFCount != 1 || y.Rank != 2 {
		t.Errorf("Unexpected StockY row: %+v", y)
	}
}

func TestAggregateWeightConservation(t *testing.T) {
	holdings := holdingsFixture()
	var inputSum float64
	for _, h := range holdings {
		for _, row := range h.Rows {
			inputSum += mustFloat(t, row["비중"])
		}
	}

	consensus := testAggregator().Aggregate(context.Background(), holdings)
	var outputSum float64
	for _, row := range consensus {
		outputSum += row.TotalWeight
	}

	if math.Abs(inputSum-outputSum) > 1e-4 {
		t.Errorf("Weight not conserved: input %f, output %f", inputSum, outputSum)
	}
}

func TestAggregateRanksAreDense(t *testing.T) {
	holdings := []types.RawHoldings{{
		Columns: []string{"종목명", "비중"},
		Rows: []types.Row{
			{"종목명": "A", "비중": "2"},
			{"종목명": "B", "비중": "2"},
			{"종목명": "C", "비중": "5"},
		},
	}}

	consensus := testAggregator().Aggregate(context.Background(), holdings)
	if len(consensus) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(consensus))
	}
	for i, row := range consensus {
		if row.Rank != i+1 {
			t.Errorf("Expected dense rank %d, got %d", i+1, row.Rank)
		}
	}
	if consensus[0].StockName != "C" {
		t.Errorf("Expected C at rank 1, got %s", consensus[0].StockName)
	}
	// Exact tie between A and B keeps first-occurrence order.
	if consensus[1].StockName != "A" || consensus[2].StockName != "B" {
		t.Errorf("Expected tie order A then B, got %s then %s", consensus[1].StockName, consensus[2].StockName)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	first := testAggregator().Aggregate(context.Background(), holdingsFixture())
	second := testAggregator().Aggregate(context.Background(), holdingsFixture())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aggregation not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if got := testAggregator().Aggregate(context.Background(), nil); len(got) != 0 {
		t.Errorf("Expected empty result for empty input, got %+v", got)
	}
}

func TestAggregateUnresolvableSchema(t *testing.T) {
	holdings := []types.RawHoldings{{
		Columns: []string{"foo", "bar"},
		Rows:    []types.Row{{"foo": "x", "bar": "1"}},
	}}
	if got := testAggregator().Aggregate(context.Background(), holdings); len(got) != 0 {
		t.Errorf("Expected empty result for unresolvable schema, got %+v", got)
	}
}

func TestAggregateDerivedWeights(t *testing.T) {
	holdings := []types.RawHoldings{{
		Columns: []string{"종목명", "평가금액"},
		Rows: []types.Row{
			{"종목명": "A", "평가금액": "100"},
			{"종목명": "B", "평가금액": "300"},
		},
	}}

	consensus := testAggregator().Aggregate(context.Background(), holdings)
	if len(consensus) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(consensus))
	}
	if consensus[0].StockName != "B" || consensus[0].TotalWeight != 75.0 {
		t.Errorf("Expected B at 75.0, got %+v", consensus[0])
	}
	if consensus[1].StockName != "A" || consensus[1].TotalWeight != 25.0 {
		t.Errorf("Expected A at 25.0, got %+v", consensus[1])
	}
}

func TestAnalyzeNoDataPropagates(t *testing.T) {
	analyzer := New(schema.NewResolver(nil, nil, ""))
	consensus, diff := analyzer.Analyze(context.Background(), nil, nil)
	if len(consensus) != 0 || len(diff) != 0 {
		t.Errorf("Expected empty consensus and diff, got %d/%d rows", len(consensus), len(diff))
	}
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("bad fixture number %q: %v", s, err)
	}
	return v
}
