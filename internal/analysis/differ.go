package analysis

import (
	"sort"

	"active-etf-analyzer/internal/types"
)

// Diff merges today's consensus table against the previous snapshot,
// classifying every stock as New, Out, or Maintain and computing the
// weight delta. prev may be nil or empty (first run, missing file):
// every stock is then New with the full today's weight as delta.
//
// Result ordering is weight delta descending; stocks only in prev carry
// negative deltas and sort to the bottom.
func Diff(today, prev []types.ConsensusRow) []types.DiffRow {
	if len(today) == 0 && len(prev) == 0 {
		return nil
	}

	if len(prev) == 0 {
		diff := make([]types.DiffRow, 0, len(today))
		for _, row := range today {
			diff = append(diff, types.DiffRow{
				StockName:   row.StockName,
				TotalWeight: row.TotalWeight,
				PrevWeight:  0,
				WeightDiff:  types.Round4(row.TotalWeight),
				Status:      types.StatusNew,
			})
		}
		sortByDiff(diff)
		return diff
	}

	prevWeights := make(map[string]float64, len(prev))
	for _, row := range prev {
		prevWeights[row.StockName] = row.TotalWeight
	}

	// Full outer join on stock name: today's rows first, then prev-only
	// rows in their snapshot order.
	inToday := make(map[string]bool, len(today))
	diff := make([]types.DiffRow, 0, len(today)+len(prev))
	for _, row := range today {
		inToday[row.StockName] = true
		diff = append(diff, classify(row.StockName, row.TotalWeight, prevWeights[row.StockName]))
	}
	for _, row := range prev {
		if !inToday[row.StockName] {
			diff = append(diff, classify(row.StockName, 0, row.TotalWeight))
		}
	}

	sortByDiff(diff)
	return diff
}

// classify applies the status rule: prev==0 and today>0 is New, today==0
// and prev>0 is Out, anything else Maintain.
func classify(name string, today, prev float64) types.DiffRow {
	status := types.StatusMaintain
	switch {
	case prev == 0 && today > 0:
		status = types.StatusNew
	case today == 0 && prev > 0:
		status = types.StatusOut
	}
	return types.DiffRow{
		StockName:   name,
		TotalWeight: today,
		PrevWeight:  prev,
		WeightDiff:  types.Round4(today - prev),
		Status:      status,
	}
}

func sortByDiff(diff []types.DiffRow) {
	sort.SliceStable(diff, func(i, j int) bool {
		return diff[i].WeightDiff > diff[j].WeightDiff
	})
}
