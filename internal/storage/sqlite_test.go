package storage

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales/internal/aggregate"
	"sales/internal/core"
)

func TestSQLiteAggregatorMatchesMemory(t *testing.T) {
	ctx := context.Background()
	amounts := []struct {
		key   core.GroupKey
		cents int64
	}{
		{"2024-06-01", 1000},
		{"2024-06-02", 550},
		{"2024-06-03", 250},
		{"2024-06-03", 2000},
		{"2024-06-05", 300},
		{"2024-06-06", 700},
		{"2024-06-02", 0},
		{"2024-06-05", 250},
	}

	sqliteAgg, err := NewSQLiteAggregator(ctx)
	require.NoError(t, err)
	defer sqliteAgg.Close()
	memAgg := aggregate.NewMemory()

	for _, a := range amounts {
		require.NoError(t, sqliteAgg.Add(ctx, a.key, core.Money{Cents: a.cents}))
		require.NoError(t, memAgg.Add(ctx, a.key, core.Money{Cents: a.cents}))
	}

	got, err := sqliteAgg.Result(ctx)
	require.NoError(t, err)
	want, err := memAgg.Result(ctx)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	require.Len(t, got, 5)
	assert.Equal(t, core.ReportRow{Key: "2024-06-03", Total: core.Money{Cents: 2250}, Count: 2}, got[0])
	// 2024-06-02 and 2024-06-05 tie on 5.50; key order breaks the tie
	assert.Equal(t, core.GroupKey("2024-06-02"), got[2].Key)
	assert.Equal(t, core.GroupKey("2024-06-05"), got[3].Key)
}

func TestAggregatorsRejectOverflowAlike(t *testing.T) {
	ctx := context.Background()

	sqliteAgg, err := NewSQLiteAggregator(ctx)
	require.NoError(t, err)
	defer sqliteAgg.Close()

	for name, agg := range map[string]aggregate.Aggregator{
		"memory": aggregate.NewMemory(),
		"sqlite": sqliteAgg,
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, agg.Add(ctx, "2024-01-01", core.Money{Cents: math.MaxInt64}))
			require.NoError(t, agg.Add(ctx, "2024-01-02", core.Money{Cents: 1}))

			err := agg.Add(ctx, "2024-01-01", core.Money{Cents: 1})
			require.ErrorIs(t, err, core.ErrAmountOverflow)

			rows, err := agg.Result(ctx)
			require.NoError(t, err)
			assert.Equal(t, []core.ReportRow{
				{Key: "2024-01-01", Total: core.Money{Cents: math.MaxInt64}, Count: 1},
				{Key: "2024-01-02", Total: core.Money{Cents: 1}, Count: 1},
			}, rows)
		})
	}
}

func TestSQLiteAggregatorEmpty(t *testing.T) {
	ctx := context.Background()
	agg, err := NewSQLiteAggregator(ctx)
	require.NoError(t, err)
	defer agg.Close()

	rows, err := agg.Result(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteAggregatorAddAfterResult(t *testing.T) {
	ctx := context.Background()
	agg, err := NewSQLiteAggregator(ctx)
	require.NoError(t, err)
	defer agg.Close()

	require.NoError(t, agg.Add(ctx, "ALL", core.Money{Cents: 1}))
	_, err = agg.Result(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, agg.Add(ctx, "ALL", core.Money{Cents: 1}), ErrFinished)

	// Result is repeatable once committed
	rows, err := agg.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.ReportRow{{Key: "ALL", Total: core.Money{Cents: 1}, Count: 1}}, rows)
}

func TestSQLiteAggregatorCloseIsIdempotent(t *testing.T) {
	agg, err := NewSQLiteAggregator(context.Background())
	require.NoError(t, err)
	require.NoError(t, agg.Close())
	require.NoError(t, agg.Close())
}
