// Package analysis builds the daily consensus table from per-ETF
// holdings and diffs it against the previous trading day's snapshot.
package analysis

import (
	"context"
	"errors"
	"sort"

	"active-etf-analyzer/internal/logger"
	"active-etf-analyzer/internal/schema"
	"active-etf-analyzer/internal/types"
)

// Aggregator combines holdings across all selected ETFs into one
// ranked per-stock exposure table.
type Aggregator struct {
	resolver *schema.Resolver
}

// NewAggregator creates an aggregator using the given schema resolver.
func NewAggregator(resolver *schema.Resolver) *Aggregator {
	return &Aggregator{resolver: resolver}
}

// Aggregate merges the per-ETF holdings tables into the consensus
// table. Empty input or an unresolvable schema yields an empty table;
// neither is an error for the run.
func (a *Aggregator) Aggregate(ctx context.Context, holdings []types.RawHoldings) []types.ConsensusRow {
	if len(holdings) == 0 {
		return nil
	}

	columns, rows := combine(holdings)
	logger.Info(ctx, "Combined holdings", "etfs", len(holdings), "rows", len(rows))

	res, err := a.resolver.Resolve(columns)
	if err != nil {
		if errors.Is(err, schema.ErrUnresolved) {
			logger.Warn(ctx, "Could not resolve holdings schema", "columns", columns)
			return nil
		}
		logger.ErrorWithErr(ctx, "Schema resolution failed", err)
		return nil
	}

	var derived []schema.DerivedWeight
	if res.Derived {
		logger.Warn(ctx, "No weight column found, deriving weights from amounts", "amount_column", res.WeightColumn)
		derived = res.DeriveWeights(rows)
	}

	type group struct {
		name  string
		total float64
		count int
	}
	groups := map[string]*group{}
	var order []*group

	for i, row := range rows {
		name := res.Name(row)
		if name == "" {
			continue
		}
		var w float64
		var ok bool
		if res.Derived {
			w, ok = derived[i].Value, derived[i].Present
		} else {
			w, ok = res.Weight(row)
		}
		if !ok {
			continue
		}
		g := groups[name]
		if g == nil {
			g = &group{name: name}
			groups[name] = g
			order = append(order, g)
		}
		g.total += w
		g.count++
	}

	// Stable sort keeps first-occurrence order among exact ties.
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].total > order[j].total
	})

	consensus := make([]types.ConsensusRow, 0, len(order))
	for i, g := range order {
		consensus = append(consensus, types.ConsensusRow{
			StockName:   g.name,
			TotalWeight: types.Round4(g.total),
			AvgWeight:   types.Round4(g.total / float64(g.count)),
			ETFCount:    g.count,
			Rank:        i + 1,
		})
	}
	return consensus
}

// combine concatenates all holdings tables, preserving row order and
// the union of columns in first-seen order. The same stock appears once
// per ETF that holds it.
func combine(holdings []types.RawHoldings) ([]string, []types.Row) {
	seen := map[string]bool{}
	var columns []string
	var rows []types.Row
	for _, h := range holdings {
		for _, c := range h.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
		rows = append(rows, h.Rows...)
	}
	return columns, rows
}
