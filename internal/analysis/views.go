package analysis

import "active-etf-analyzer/internal/types"

// Read-only projections over the consensus and diff tables. Each
// returns a fresh slice and never mutates its input.

// TopHoldings returns the first n consensus rows. The table is already
// rank-ordered.
func TopHoldings(consensus []types.ConsensusRow, n int) []types.ConsensusRow {
	if n < 0 {
		n = 0
	}
	if n > len(consensus) {
		n = len(consensus)
	}
	out := make([]types.ConsensusRow, n)
	copy(out, consensus[:n])
	return out
}

// TopIncreases returns up to n diff rows with a positive weight delta.
// The diff table is already delta-descending, so this filters and
// truncates without re-sorting.
func TopIncreases(diff []types.DiffRow, n int) []types.DiffRow {
	if n < 0 {
		n = 0
	}
	out := make([]types.DiffRow, 0, n)
	for _, row := range diff {
		if len(out) == n {
			break
		}
		if row.WeightDiff > 0 {
			out = append(out, row)
		}
	}
	return out
}

// NewEntries returns all diff rows with status New.
func NewEntries(diff []types.DiffRow) []types.DiffRow {
	return filterStatus(diff, types.StatusNew)
}

// Exits returns all diff rows with status Out.
func Exits(diff []types.DiffRow) []types.DiffRow {
	return filterStatus(diff, types.StatusOut)
}

func filterStatus(diff []types.DiffRow, status types.Status) []types.DiffRow {
	out := []types.DiffRow{}
	for _, row := range diff {
		if row.Status == status {
			out = append(out, row)
		}
	}
	return out
}
