package analysis

import (
	"testing"

	"active-etf-analyzer/internal/types"
)

func viewsFixture() ([]types.ConsensusRow, []types.DiffRow) {
	consensus := []types.ConsensusRow{
		{StockName: "A", TotalWeight: 9, Rank: 1},
		{StockName: "B", TotalWeight: 5, Rank: 2},
		{StockName: "C", TotalWeight: 2, Rank: 3},
	}
	diff := []types.DiffRow{
		{StockName: "A", WeightDiff: 3, Status: types.StatusNew},
		{StockName: "B", WeightDiff: 1, Status: types.StatusMaintain},
		{StockName: "C", WeightDiff: 0, Status: types.StatusMaintain},
		{StockName: "D", WeightDiff: -2, Status: types.StatusOut},
	}
	return consensus, diff
}

func TestTopHoldings(t *testing.T) {
	consensus, _ := viewsFixture()

	top := TopHoldings(consensus, 2)
	if len(top) != 2 || top[0].StockName != "A" || top[1].StockName != "B" {
		t.Errorf("Unexpected top holdings: %+v", top)
	}

	// n beyond table length returns everything.
	if got := TopHoldings(consensus, 10); len(got) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(got))
	}

	// The returned slice is a copy.
	top[0].StockName = "mutated"
	if consensus[0].StockName != "A" {
		t.Error("TopHoldings must not share backing storage with its input")
	}
}

func TestTopIncreases(t *testing.T) {
	_, diff := viewsFixture()

	inc := TopIncreases(diff, 5)
	if len(inc) != 2 {
		t.Fatalf("Expected 2 positive-delta rows, got %d", len(inc))
	}
	if inc[0].StockName != "A" || inc[1].StockName != "B" {
		t.Errorf("Unexpected increase order: %+v", inc)
	}

	if got := TopIncreases(diff, 1); len(got) != 1 || got[0].StockName != "A" {
		t.Errorf("Expected truncation to A, got %+v", got)
	}
}

func TestNewEntriesAndExits(t *testing.T) {
	_, diff := viewsFixture()

	entries := NewEntries(diff)
	if len(entries) != 1 || entries[0].StockName != "A" {
		t.Errorf("Unexpected new entries: %+v", entries)
	}

	exits := Exits(diff)
	if len(exits) != 1 || exits[0].StockName != "D" {
		t.Errorf("Unexpected exits: %+v", exits)
	}
}
