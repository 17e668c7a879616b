// Package salesfile reads sales records from CSV files and writes report rows
// back as CSV.
package salesfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"sales/internal/cache"
	"sales/internal/core"
	applog "sales/internal/log"
)

// Columns names the header fields the reader looks for. Matching is
// case-insensitive and ignores surrounding whitespace.
type Columns struct {
	Amount string
	Date   string
	SKU    string
}

func DefaultColumns() Columns {
	return Columns{Amount: "amount", Date: "date", SKU: "sku"}
}

// Schema holds the header position of each column, -1 when absent.
type Schema struct {
	Amount int
	Date   int
	SKU    int
}

type Options struct {
	Columns  Columns
	Grouping core.Grouping
	// DateCacheSize bounds the memo of parsed date strings; 0 disables it.
	DateCacheSize int
	Logger        *applog.Logger
}

// Reader yields one validated record per data row. Rows are parsed lazily,
// nothing is buffered beyond the current row.
type Reader struct {
	csv    *csv.Reader
	opts   Options
	schema Schema
	dates  *cache.LRU[string, core.Date]
	logger *applog.Logger
	empty  bool
	count  int64
}

// Open opens the input file, mapping a missing path to core.ErrFileNotFound.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadable, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadable, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", core.ErrUnreadable, path)
	}
	return f, nil
}

// NewReader consumes the header row and resolves the schema. An input with no
// header row at all is treated as empty; a header that lacks a required
// column yields a *core.SchemaError before any data row is read.
func NewReader(r io.Reader, opts Options) (*Reader, error) {
	if opts.Columns == (Columns{}) {
		opts.Columns = DefaultColumns()
	}
	if opts.Grouping == "" {
		opts.Grouping = core.GroupAll
	}
	if !opts.Grouping.IsValid() {
		return nil, fmt.Errorf("unsupported grouping: %s", opts.Grouping)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	rd := &Reader{
		csv:    cr,
		opts:   opts,
		dates:  cache.NewLRU[string, core.Date](opts.DateCacheSize),
		logger: logger.WithComponent(applog.ComponentReader),
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		rd.empty = true
		return rd, nil
	}
	if err != nil {
		return nil, parseError(err)
	}

	schema, err := resolveSchema(header, opts)
	if err != nil {
		return nil, err
	}
	rd.schema = schema
	rd.logger.Debug("Header resolved",
		applog.FieldOperation, applog.OpParse,
		applog.FieldColumns, len(header))
	return rd, nil
}

func resolveSchema(header []string, opts Options) (Schema, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	schema := Schema{
		Amount: indexOf(header, opts.Columns.Amount),
		Date:   indexOf(header, opts.Columns.Date),
		SKU:    indexOf(header, opts.Columns.SKU),
	}

	var missing []string
	if schema.Amount == -1 {
		missing = append(missing, opts.Columns.Amount)
	}
	if opts.Grouping == core.GroupByDate && schema.Date == -1 {
		missing = append(missing, opts.Columns.Date)
	}
	if opts.Grouping == core.GroupBySKU && schema.SKU == -1 {
		missing = append(missing, opts.Columns.SKU)
	}
	if len(missing) > 0 {
		return schema, &core.SchemaError{Missing: missing}
	}
	return schema, nil
}

// Schema returns the resolved column positions.
func (r *Reader) Schema() Schema {
	return r.schema
}

// Next returns the next record, or io.EOF once the input is exhausted.
// Any malformed row yields a *core.ValidationError.
func (r *Reader) Next() (core.Record, error) {
	if r.empty {
		return core.Record{}, io.EOF
	}
	fields, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return core.Record{}, io.EOF
	}
	if err != nil {
		return core.Record{}, r.reject(parseError(err))
	}

	line, _ := r.csv.FieldPos(0)
	invalid := func(column, value string, cause error) error {
		return r.reject(&core.ValidationError{Line: line, Field: column, Value: value, Raw: formatRow(fields), Err: cause})
	}

	rec := core.Record{Line: line}

	amountStr := strings.TrimSpace(safeGet(fields, r.schema.Amount))
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return core.Record{}, invalid(r.opts.Columns.Amount, amountStr, err)
	}
	rec.Amount = amount

	if r.schema.Date != -1 {
		dateStr := strings.TrimSpace(safeGet(fields, r.schema.Date))
		d, err := r.dates.GetOrLoad(dateStr, core.ParseDate)
		switch {
		case err == nil:
			rec.Date = d
		case r.opts.Grouping == core.GroupByDate:
			return core.Record{}, invalid(r.opts.Columns.Date, dateStr, err)
		}
	}

	rec.SKU = strings.TrimSpace(safeGet(fields, r.schema.SKU))
	if r.opts.Grouping == core.GroupBySKU && rec.SKU == "" {
		return core.Record{}, invalid(r.opts.Columns.SKU, rec.SKU, core.ErrEmptySKU)
	}

	r.count++
	return rec, nil
}

// Count returns the number of records returned so far.
func (r *Reader) Count() int64 {
	return r.count
}

// DateCacheStats returns hits and misses of the date memo.
func (r *Reader) DateCacheStats() (hits, misses int) {
	return r.dates.Stats()
}

func (r *Reader) reject(err error) error {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		r.logger.Debug("Row rejected",
			applog.FieldOperation, applog.OpParse,
			applog.FieldLine, vErr.Line,
			applog.FieldError, vErr.Err)
	}
	return err
}

// formatRow re-encodes parsed fields as one CSV line, quoting where needed,
// so error messages show the row as it was delimited.
func formatRow(fields []string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(fields); err != nil {
		return strings.Join(fields, ",")
	}
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}

func parseError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &core.ValidationError{Line: pe.StartLine, Err: pe.Err}
	}
	return fmt.Errorf("read input: %w", err)
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
