package engine

import (
	"context"
	"fmt"

	"sales/internal/aggregate"
	applog "sales/internal/log"
	"sales/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new engine factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentAggregate)}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, t Type) (*Result, error) {
	switch t {
	case Memory:
		f.logger.DebugContext(ctx, "Using memory engine", applog.FieldEngine, t.String())
		return &Result{
			Aggregator: aggregate.NewMemory(),
			Cleanup:    func() error { return nil },
		}, nil
	case SQLite:
		agg, err := storage.NewSQLiteAggregator(applog.WithLogger(ctx, f.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite engine: %w", err)
		}
		f.logger.DebugContext(ctx, "Using sqlite engine", applog.FieldEngine, t.String())
		return &Result{
			Aggregator: agg,
			Cleanup:    agg.Close,
		}, nil
	default:
		return nil, fmt.Errorf("invalid engine type: %s", t)
	}
}
