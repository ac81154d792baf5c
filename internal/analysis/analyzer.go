package analysis

import (
	"context"

	"active-etf-analyzer/internal/schema"
	"active-etf-analyzer/internal/types"
)

// Analyzer runs the full holdings analysis for one date: aggregation
// into the consensus table, then the day-over-day diff.
type Analyzer struct {
	agg *Aggregator
}

// New creates an analyzer using the given schema resolver.
func New(resolver *schema.Resolver) *Analyzer {
	return &Analyzer{agg: NewAggregator(resolver)}
}

// Analyze aggregates all holdings tables and diffs the result against
// prev (nil when no prior snapshot exists). When the holdings carry no
// usable data both returned tables are empty; that is the single point
// where the pipeline degrades to a "no data" outcome.
func (a *Analyzer) Analyze(ctx context.Context, holdings []types.RawHoldings, prev []types.ConsensusRow) ([]types.ConsensusRow, []types.DiffRow) {
	consensus := a.agg.Aggregate(ctx, holdings)
	if len(consensus) == 0 {
		return nil, nil
	}
	return consensus, Diff(consensus, prev)
}
