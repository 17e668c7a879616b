package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales/internal/core"
	"sales/internal/engine"
)

const sampleCSV = `date,sku,amount
2024-06-01,AAA,10.0
2024-06-02,BBB,5.5
2024-06-03,AAA,2.5
2024-06-03,CCC,20
2024-06-05,BBB,3
2024-06-06,AAA,7
`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newService() *ReportService {
	return NewReportService(nil, nil)
}

func TestRunExampleByDate(t *testing.T) {
	input := writeInput(t, "sku,date,amount\nA,2024-01-01,10\nB,2024-01-01,5\nA,2024-01-02,7\n")

	for _, eng := range engine.Types() {
		t.Run(eng.String(), func(t *testing.T) {
			res, err := newService().Run(context.Background(), Options{
				Path:     input,
				Grouping: core.GroupByDate,
				Top:      2,
				Engine:   eng,
			})
			require.NoError(t, err)

			assert.Equal(t, []core.ReportRow{
				{Key: "2024-01-01", Total: core.Money{Cents: 1500}, Count: 2},
				{Key: "2024-01-02", Total: core.Money{Cents: 700}, Count: 1},
			}, res.Report.Rows)
			assert.Equal(t, int64(3), res.Records)
			assert.Equal(t, 2, res.Groups)
			assert.NotEmpty(t, res.RunID)
		})
	}
}

func TestRunSumOfTotalsMatchesInput(t *testing.T) {
	input := writeInput(t, sampleCSV)

	for _, grouping := range []core.Grouping{core.GroupAll, core.GroupByDate, core.GroupBySKU} {
		for _, eng := range engine.Types() {
			t.Run(string(grouping)+"/"+eng.String(), func(t *testing.T) {
				res, err := newService().Run(context.Background(), Options{
					Path:     input,
					Grouping: grouping,
					Top:      100,
					Engine:   eng,
				})
				require.NoError(t, err)

				var sum core.Money
				var count int64
				for _, row := range res.Report.Rows {
					sum, err = sum.Add(row.Total)
					require.NoError(t, err)
					count += row.Count
				}
				assert.Equal(t, int64(4800), sum.Cents)
				assert.Equal(t, int64(6), count)
				assert.Equal(t, res.Report.Summary.Total, sum)
				assert.Equal(t, "2024-06-01..2024-06-06", res.Report.Summary.DateRange())
			})
		}
	}
}

func TestRunBySKURanksAndTruncates(t *testing.T) {
	input := writeInput(t, sampleCSV)

	res, err := newService().Run(context.Background(), Options{
		Path:     input,
		Grouping: core.GroupBySKU,
		Top:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, []core.ReportRow{
		{Key: "CCC", Total: core.Money{Cents: 2000}, Count: 1},
		{Key: "AAA", Total: core.Money{Cents: 1950}, Count: 3},
	}, res.Report.Rows)
	assert.Equal(t, 3, res.Groups)
}

func TestRunGroupAllUsesConfiguredKey(t *testing.T) {
	input := writeInput(t, sampleCSV)

	res, err := newService().Run(context.Background(), Options{
		Path:        input,
		Top:         10,
		GroupAllKey: "TOTAL_SALES",
	})
	require.NoError(t, err)
	require.Len(t, res.Report.Rows, 1)
	assert.Equal(t, core.GroupKey("TOTAL_SALES"), res.Report.Rows[0].Key)
}

func TestRunIsIdempotent(t *testing.T) {
	input := writeInput(t, sampleCSV)
	dir := t.TempDir()
	out1 := filepath.Join(dir, "one.csv")
	out2 := filepath.Join(dir, "two.csv")

	first, err := newService().Run(context.Background(), Options{Path: input, OutPath: out1, Grouping: core.GroupByDate, Top: 3})
	require.NoError(t, err)
	second, err := newService().Run(context.Background(), Options{Path: input, OutPath: out2, Grouping: core.GroupByDate, Top: 3, Engine: engine.SQLite})
	require.NoError(t, err)

	assert.Equal(t, string(first.Table), string(second.Table))

	b1, err := os.ReadFile(out1)
	require.NoError(t, err)
	b2, err := os.ReadFile(out2)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
	assert.Equal(t, "group_key,total,count\n2024-06-03,22.50,2\n2024-06-01,10.00,1\n2024-06-06,7.00,1\n", string(b1))
}

func TestRunValidationErrorWritesNothing(t *testing.T) {
	input := writeInput(t, "sku,date,amount\nA,2024-01-01,10\nB,2024-01-01,abc\nC,2024-01-02,1\n")
	out := filepath.Join(t.TempDir(), "report.csv")

	res, err := newService().Run(context.Background(), Options{Path: input, OutPath: out, Top: 10})
	require.Error(t, err)
	assert.Nil(t, res)

	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 3, vErr.Line)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "B,2024-01-01,abc")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "output file must not be created")
}

func TestRunAmountOverflowFailsOnBothEngines(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		grouping core.Grouping
	}{
		{
			name:     "one group",
			csv:      "sku,date,amount\nA,2024-01-01,92233720368547758.07\nB,2024-01-01,0.01\n",
			grouping: core.GroupByDate,
		},
		{
			name:     "summary only",
			csv:      "sku,date,amount\nA,2024-01-01,92233720368547758.07\nB,2024-01-02,0.01\n",
			grouping: core.GroupByDate,
		},
	}

	for _, tt := range tests {
		for _, eng := range engine.Types() {
			t.Run(tt.name+"/"+eng.String(), func(t *testing.T) {
				out := filepath.Join(t.TempDir(), "report.csv")

				res, err := newService().Run(context.Background(), Options{
					Path:     writeInput(t, tt.csv),
					OutPath:  out,
					Grouping: tt.grouping,
					Top:      10,
					Engine:   eng,
				})
				require.Error(t, err)
				assert.Nil(t, res)
				assert.ErrorIs(t, err, core.ErrAmountOverflow)

				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, 3, vErr.Line)
				assert.Equal(t, "amount", vErr.Field)

				_, statErr := os.Stat(out)
				assert.True(t, os.IsNotExist(statErr))
			})
		}
	}
}

func TestRunMissingInputLeavesOutputUntouched(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(out, []byte("previous\n"), 0o644))

	_, err := newService().Run(context.Background(), Options{
		Path:    filepath.Join(t.TempDir(), "missing.csv"),
		OutPath: out,
		Top:     10,
	})
	require.ErrorIs(t, err, core.ErrFileNotFound)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(b))
}

func TestRunSchemaError(t *testing.T) {
	input := writeInput(t, "sku,amount\nA,10\n")

	_, err := newService().Run(context.Background(), Options{Path: input, Grouping: core.GroupByDate, Top: 10})

	var sErr *core.SchemaError
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, []string{"date"}, sErr.Missing)
}

func TestRunEmptyInput(t *testing.T) {
	for name, content := range map[string]string{
		"zero bytes":  "",
		"header only": "date,sku,amount\n",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := newService().Run(context.Background(), Options{
				Path:     writeInput(t, content),
				Grouping: core.GroupByDate,
				Top:      10,
			})
			require.NoError(t, err)
			assert.Empty(t, res.Report.Rows)
			assert.Contains(t, string(res.Table), "DATE_RANGE  unknown")
			assert.True(t, strings.Contains(string(res.Table), "0.00"))
		})
	}
}

func TestRunInvalidTop(t *testing.T) {
	_, err := newService().Run(context.Background(), Options{Path: writeInput(t, sampleCSV), Top: 0})
	assert.ErrorIs(t, err, core.ErrInvalidTop)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService().Run(ctx, Options{Path: writeInput(t, sampleCSV), Top: 10})
	assert.ErrorIs(t, err, context.Canceled)
}
