package engine

import (
	"context"

	"sales/internal/aggregate"
)

// CleanupFunc releases resources held by an engine
type CleanupFunc func() error

// Result contains the aggregator instance and its cleanup function.
// Cleanup is never nil.
type Result struct {
	Aggregator aggregate.Aggregator
	Cleanup    CleanupFunc
}

// Factory creates aggregators based on configuration
type Factory interface {
	Create(ctx context.Context, t Type) (*Result, error)
}

// Type names an aggregation engine
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the engine type is known
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}

// Types returns all valid engine types
func Types() []Type {
	return []Type{Memory, SQLite}
}

// TypeStrings returns all valid engine type strings
func TypeStrings() []string {
	types := Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
