// Package aggregate folds sales records into per-group totals and ranks the
// resulting report rows.
package aggregate

import (
	"cmp"
	"context"
	"slices"

	"sales/internal/core"
)

// Aggregator defines the interface for the fold step of a report run.
// Add is called once per record; Result returns every group in report order.
type Aggregator interface {
	// Add folds one amount into the aggregate of key.
	Add(ctx context.Context, key core.GroupKey, amount core.Money) error
	// Result returns the aggregated rows, ordered by Compare.
	Result(ctx context.Context) ([]core.ReportRow, error)
}

// KeyFunc derives the group key of a record.
type KeyFunc func(core.Record) core.GroupKey

// KeyFor returns the key function for a grouping. allKey is the constant used
// when every record lands in one group.
func KeyFor(g core.Grouping, allKey core.GroupKey) KeyFunc {
	switch g {
	case core.GroupByDate:
		return func(r core.Record) core.GroupKey { return core.GroupKey(r.Date.String()) }
	case core.GroupBySKU:
		return func(r core.Record) core.GroupKey { return core.GroupKey(r.SKU) }
	default:
		return func(core.Record) core.GroupKey { return allKey }
	}
}

// Compare orders report rows by descending total, then ascending key.
// Date keys are YYYY-MM-DD, so lexicographic order is date order.
func Compare(a, b core.ReportRow) int {
	if c := cmp.Compare(b.Total.Cents, a.Total.Cents); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}

// Rank sorts rows in report order and keeps the first top rows.
// A non-positive top keeps every row. The input slice is not modified.
func Rank(rows []core.ReportRow, top int) []core.ReportRow {
	ranked := slices.Clone(rows)
	slices.SortFunc(ranked, Compare)
	if top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}
	return ranked
}
