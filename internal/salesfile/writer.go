package salesfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"sales/internal/core"
)

// ReportHeader is the header row of report files.
var ReportHeader = []string{"group_key", "total", "count"}

// WriteReport writes rows as CSV with a header row.
func WriteReport(w io.Writer, rows []core.ReportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ReportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{string(row.Key), row.Total.String(), strconv.FormatInt(row.Count, 10)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteReportFile renders the report and writes it to path, truncating any
// existing file. Failures are returned as *core.OutputError.
func WriteReportFile(path string, rows []core.ReportRow) error {
	var buf bytes.Buffer
	if err := WriteReport(&buf, rows); err != nil {
		return &core.OutputError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &core.OutputError{Path: path, Err: err}
	}
	return nil
}
