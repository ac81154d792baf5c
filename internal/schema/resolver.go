// Package schema locates the weight and stock-name fields in raw
// holdings tables whose column names vary by provider.
package schema

import (
	"errors"
	"strconv"
	"strings"

	"active-etf-analyzer/internal/types"
)

// ErrUnresolved reports that no candidate column matched. Callers treat
// it as "no usable data", never as a fatal condition.
var ErrUnresolved = errors.New("schema: no candidate column matched")

// Default candidate lists, in probe priority order. They follow the
// upstream KRX feed's Korean headers with English fallbacks.
var (
	DefaultWeightColumns = []string{"비중", "비중(%)", "Weight", "구성비중"}
	DefaultNameColumns   = []string{"종목명", "종목", "Name", "구성종목명"}
	DefaultAmountColumn  = "평가금액"
)

// Resolver probes a fixed, data-driven priority list of candidate
// column names. New provider schemas are handled by extending the
// lists, not by adding branches.
type Resolver struct {
	weightColumns []string
	nameColumns   []string
	amountColumn  string
}

// Resolution is the outcome of probing one combined holdings table.
// When Derived is true the weight column did not exist and per-row
// weights were computed from the monetary value column.
type Resolution struct {
	WeightColumn string
	NameColumn   string
	Derived      bool
}

// NewResolver builds a resolver from candidate lists. Empty arguments
// fall back to the defaults.
func NewResolver(weightColumns, nameColumns []string, amountColumn string) *Resolver {
	r := &Resolver{
		weightColumns: weightColumns,
		nameColumns:   nameColumns,
		amountColumn:  amountColumn,
	}
	if len(r.weightColumns) == 0 {
		r.weightColumns = DefaultWeightColumns
	}
	if len(r.nameColumns) == 0 {
		r.nameColumns = DefaultNameColumns
	}
	if r.amountColumn == "" {
		r.amountColumn = DefaultAmountColumn
	}
	return r
}

// Resolve identifies the weight and name columns among the given column
// set. If no weight candidate matches but the amount column exists, the
// weight column is reported as derived: callers obtain per-row weights
// via DeriveWeights. Returns ErrUnresolved when neither field can be
// located.
func (r *Resolver) Resolve(columns []string) (Resolution, error) {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	var res Resolution
	for _, c := range r.weightColumns {
		if present[c] {
			res.WeightColumn = c
			break
		}
	}
	if res.WeightColumn == "" {
		if !present[r.amountColumn] {
			return Resolution{}, ErrUnresolved
		}
		res.WeightColumn = r.amountColumn
		res.Derived = true
	}

	for _, c := range r.nameColumns {
		if present[c] {
			res.NameColumn = c
			return res, nil
		}
	}
	return Resolution{}, ErrUnresolved
}

// Weight extracts the row's weight under the resolution. For derived
// resolutions the raw monetary amount is returned; DeriveWeights turns
// amounts into percentages. ok is false when the cell is missing or not
// numeric.
func (r *Resolution) Weight(row types.Row) (float64, bool) {
	return parseNumber(row[r.WeightColumn])
}

// Name extracts the row's stock name under the resolution.
func (r *Resolution) Name(row types.Row) string {
	return strings.TrimSpace(row[r.NameColumn])
}

// DeriveWeights converts monetary amounts to percentage weights,
// amount / sum(amount) * 100 rounded to 4 decimals. Rows without a
// parseable amount contribute nothing to the total and yield an entry
// with Present=false. The result is aligned with rows.
func (r *Resolution) DeriveWeights(rows []types.Row) []DerivedWeight {
	total := 0.0
	amounts := make([]DerivedWeight, len(rows))
	for i, row := range rows {
		if v, ok := parseNumber(row[r.WeightColumn]); ok {
			amounts[i] = DerivedWeight{Value: v, Present: true}
			total += v
		}
	}
	if total == 0 {
		for i := range amounts {
			amounts[i].Present = false
		}
		return amounts
	}
	for i := range amounts {
		if amounts[i].Present {
			amounts[i].Value = types.Round4(amounts[i].Value / total * 100)
		}
	}
	return amounts
}

// DerivedWeight is one row's amount-derived weight.
type DerivedWeight struct {
	Value   float64
	Present bool
}

// parseNumber parses a numeric cell, tolerating thousands separators
// and surrounding whitespace.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
