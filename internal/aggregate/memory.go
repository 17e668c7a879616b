package aggregate

import (
	"context"
	"fmt"

	"sales/internal/core"
)

// Memory folds records into a map in a single pass.
type Memory struct {
	groups map[core.GroupKey]*core.Aggregate
}

var _ Aggregator = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{groups: make(map[core.GroupKey]*core.Aggregate)}
}

func (m *Memory) Add(_ context.Context, key core.GroupKey, amount core.Money) error {
	agg, ok := m.groups[key]
	if !ok {
		agg = &core.Aggregate{}
		m.groups[key] = agg
	}
	if err := agg.Add(amount); err != nil {
		return fmt.Errorf("group %q: %w", key, err)
	}
	return nil
}

func (m *Memory) Result(_ context.Context) ([]core.ReportRow, error) {
	rows := make([]core.ReportRow, 0, len(m.groups))
	for key, agg := range m.groups {
		rows = append(rows, agg.Row(key))
	}
	return Rank(rows, 0), nil
}
