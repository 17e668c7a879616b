package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldDuration  = "duration_ms"
	FieldPath      = "path"
	FieldOutput    = "output"
	FieldLine      = "line"
	FieldGrouping  = "grouping"
	FieldEngine    = "engine"
	FieldTop       = "top"
	FieldRecords   = "records"
	FieldGroups    = "groups"
	FieldRows      = "rows"
	FieldColumns   = "columns"
	FieldCacheHits = "cache_hits"
	FieldCacheMiss = "cache_misses"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentReader    = "reader"
	ComponentAggregate = "aggregate"
	ComponentStorage   = "storage"
	ComponentReport    = "report"
)

// Operations defines standard operation names
const (
	OpRead      = "read"
	OpParse     = "parse"
	OpAggregate = "aggregate"
	OpWrite     = "write"
	OpMigrate   = "migrate"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeSchema     = "schema_error"
	ErrorTypeNotFound   = "not_found_error"
	ErrorTypeIO         = "io_error"
	ErrorTypeUsage      = "usage_error"
	ErrorTypeInternal   = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithRunID adds run ID field
func (f LogFields) WithRunID(runID string) LogFields {
	f[FieldRunID] = runID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds error type field
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRun adds the parameters of a report run
func (f LogFields) WithRun(path, grouping, engine string, top int) LogFields {
	f[FieldPath] = path
	f[FieldGrouping] = grouping
	f[FieldEngine] = engine
	f[FieldTop] = top
	return f
}

// WithCounts adds record, group and emitted row counts
func (f LogFields) WithCounts(records int64, groups, rows int) LogFields {
	f[FieldRecords] = records
	f[FieldGroups] = groups
	f[FieldRows] = rows
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
