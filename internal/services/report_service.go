// Package services orchestrates a report run: read, fold, rank, render and
// write.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"sales/internal/aggregate"
	"sales/internal/core"
	"sales/internal/engine"
	applog "sales/internal/log"
	"sales/internal/report"
	"sales/internal/salesfile"
)

// Options describes one report run.
type Options struct {
	Path     string
	OutPath  string
	Grouping core.Grouping
	Top      int
	Engine   engine.Type

	Columns       salesfile.Columns
	GroupAllKey   core.GroupKey
	DateCacheSize int
}

// Result is a finished run. Table holds the rendered stdout report.
type Result struct {
	RunID   string
	Report  report.Report
	Table   []byte
	Records int64
	Groups  int
}

// ReportService runs reports against aggregation engines from a factory
type ReportService struct {
	factory engine.Factory
	logger  *applog.Logger
}

func NewReportService(factory engine.Factory, logger *applog.Logger) *ReportService {
	if logger == nil {
		logger = applog.Discard()
	}
	if factory == nil {
		factory = engine.NewFactory(logger)
	}
	return &ReportService{
		factory: factory,
		logger:  logger.WithComponent(applog.ComponentReport),
	}
}

// Run reads the input once and returns the rendered report. When OutPath is
// set the CSV file is written before Run returns. On error nothing is written.
func (s *ReportService) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Top < 1 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidTop, opts.Top)
	}
	if opts.Grouping == "" {
		opts.Grouping = core.GroupAll
	}
	if opts.Engine == "" {
		opts.Engine = engine.Memory
	}
	if opts.Columns == (salesfile.Columns{}) {
		opts.Columns = salesfile.DefaultColumns()
	}
	if opts.GroupAllKey == "" {
		opts.GroupAllKey = "ALL"
	}

	runID := uuid.NewString()
	logger := s.logger.With(applog.NewFields().
		WithRunID(runID).
		WithRun(opts.Path, string(opts.Grouping), opts.Engine.String(), opts.Top).
		ToSlice()...)
	ctx = applog.WithLogger(ctx, logger)
	start := time.Now()

	f, err := salesfile.Open(opts.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd, err := salesfile.NewReader(f, salesfile.Options{
		Columns:       opts.Columns,
		Grouping:      opts.Grouping,
		DateCacheSize: opts.DateCacheSize,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	eng, err := s.factory.Create(ctx, opts.Engine)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := eng.Cleanup(); err != nil {
			logger.WarnContext(ctx, "Engine cleanup failed", applog.FieldError, err)
		}
	}()

	keyOf := aggregate.KeyFor(opts.Grouping, opts.GroupAllKey)
	var summary core.Summary
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := rec.Validate(opts.Grouping); err != nil {
			return nil, &core.ValidationError{Line: rec.Line, Err: err}
		}
		if err := eng.Aggregator.Add(ctx, keyOf(rec), rec.Amount); err != nil {
			if errors.Is(err, core.ErrAmountOverflow) {
				return nil, overflowError(rec, opts.Columns.Amount, err)
			}
			return nil, fmt.Errorf("aggregate line %d: %w", rec.Line, err)
		}
		if err := summary.Observe(rec); err != nil {
			return nil, overflowError(rec, opts.Columns.Amount, err)
		}
	}

	hits, misses := rd.DateCacheStats()
	logger.DebugContext(ctx, "Input consumed",
		applog.FieldOperation, applog.OpRead,
		applog.FieldRecords, rd.Count(),
		applog.FieldCacheHits, hits,
		applog.FieldCacheMiss, misses)

	rows, err := eng.Aggregator.Result(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect aggregates: %w", err)
	}
	logger.DebugContext(ctx, "Aggregates collected",
		applog.FieldOperation, applog.OpAggregate,
		applog.FieldGroups, len(rows))

	rep := report.Report{
		Grouping: opts.Grouping,
		Rows:     aggregate.Rank(rows, opts.Top),
		Summary:  summary,
	}
	table, err := report.Bytes(rep)
	if err != nil {
		return nil, err
	}

	if opts.OutPath != "" {
		if err := salesfile.WriteReportFile(opts.OutPath, rep.Rows); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "Report file written",
			applog.FieldOperation, applog.OpWrite,
			applog.FieldOutput, opts.OutPath)
	}

	logger.InfoContext(ctx, "Report complete", append(
		applog.NewFields().WithCounts(rd.Count(), len(rows), len(rep.Rows)).ToSlice(),
		applog.FieldDuration, time.Since(start).Milliseconds())...)

	return &Result{
		RunID:   runID,
		Report:  rep,
		Table:   table,
		Records: rd.Count(),
		Groups:  len(rows),
	}, nil
}

func overflowError(rec core.Record, column string, err error) error {
	return &core.ValidationError{Line: rec.Line, Field: column, Value: rec.Amount.String(), Err: err}
}
