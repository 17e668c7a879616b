// Package report renders ranked report rows as a human-readable table.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sales/internal/core"
)

// Report is everything printed for one run.
type Report struct {
	Grouping core.Grouping
	Rows     []core.ReportRow
	Summary  core.Summary
}

func groupHeader(g core.Grouping) string {
	switch g {
	case core.GroupByDate:
		return "DATE"
	case core.GroupBySKU:
		return "SKU"
	default:
		return "GROUP"
	}
}

// Render writes the table followed by the TOTAL and DATE_RANGE lines.
// Output is a pure function of the report.
func Render(w io.Writer, r Report) error {
	// One tabwriter block keeps the summary aligned with the table; the blank
	// separator row is padded by tabwriter, so padding is trimmed per line.
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\tTOTAL\tCOUNT\n", groupHeader(r.Grouping))
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", row.Key, row.Total, row.Count)
	}
	fmt.Fprint(tw, "\t\t\n")
	fmt.Fprintf(tw, "TOTAL\t%s\t%d\n", r.Summary.Total, r.Summary.Count)
	fmt.Fprintf(tw, "DATE_RANGE\t%s\n", r.Summary.DateRange())

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
	}
	return nil
}

// Bytes renders the report into memory so callers can emit all or nothing.
func Bytes(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
