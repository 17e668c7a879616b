package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"sales/internal/config"
	"sales/internal/core"
	"sales/internal/engine"
	applog "sales/internal/log"
)

// Process exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func asExitError(err error) (*ExitError, bool) {
	var e *ExitError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isUsageOrInput(err error) bool {
	return errors.Is(err, core.ErrInvalidTop) || core.IsInputError(err)
}

// Invocation is the parsed command line.
type Invocation struct {
	Path      string
	OutPath   string
	Top       int
	Grouping  core.Grouping
	Engine    engine.Type
	LogLevel  string
	LogFormat string
}

const usageText = `Usage: sales-cli [options] CSV_PATH

Aggregate sales totals from a CSV file and print the largest groups.

Arguments:
  CSV_PATH
    Input file with a header row naming at least the amount column.

Options:
`

// Parse processes command-line arguments on top of cfg. Flags may appear
// before or after the input path. Flags that are set replace the matching cfg
// values, and the merged configuration is validated only after parsing, so a
// flag overrides a bad env value and -h never fails on configuration.
// It returns the invocation, a boolean indicating the program should exit
// cleanly (help was printed to output), or an *ExitError.
func Parse(args []string, cfg *config.Config, output io.Writer) (*Invocation, bool, error) {
	fs := flag.NewFlagSet("sales-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	top := fs.Int("top", cfg.Top, "Number of groups to report (at least 1).")
	byDate := fs.Bool("by-date", false, "Group totals by the date column (YYYY-MM-DD).")
	bySKU := fs.Bool("by-sku", false, "Group totals by the sku column.")
	out := fs.String("out", "", "Also write the report rows as CSV to this path.")
	engineFlag := fs.String("engine", cfg.Engine, "Aggregation engine. Options: "+strings.Join(engine.TypeStrings(), ", ")+".")
	logLevel := fs.String("log-level", cfg.LogLevel, "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormat := fs.String("log-format", cfg.LogFormat, "Log output format. Options: 'text' or 'json'.")

	fs.Usage = func() {
		fmt.Fprint(output, usageText)
		fs.SetOutput(output)
		fs.PrintDefaults()
		fs.SetOutput(io.Discard)
	}

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.Usage()
			return nil, true, nil
		}
		return nil, false, usageError(err.Error())
	}

	if len(positional) != 1 {
		if len(positional) == 0 {
			return nil, false, usageError("missing input path")
		}
		return nil, false, usageError(fmt.Sprintf("expected one input path, got %d: %s", len(positional), strings.Join(positional, " ")))
	}
	if *byDate && *bySKU {
		return nil, false, usageError("--by-date and --by-sku cannot be combined")
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["top"] {
		if *top < 1 {
			return nil, false, usageError(fmt.Sprintf("invalid --top %d: %v", *top, core.ErrInvalidTop))
		}
		cfg.SetTop(*top)
	}
	if set["engine"] {
		eng := engine.Type(strings.ToLower(strings.TrimSpace(*engineFlag)))
		if !eng.IsValid() {
			return nil, false, usageError(fmt.Sprintf("invalid --engine '%s': must be one of %s", *engineFlag, strings.Join(engine.TypeStrings(), ", ")))
		}
		cfg.Engine = eng.String()
	}
	if set["log-level"] {
		level := strings.ToLower(strings.TrimSpace(*logLevel))
		if _, err := applog.ParseLevel(level); err != nil {
			return nil, false, usageError(err.Error())
		}
		cfg.LogLevel = level
	}
	if set["log-format"] {
		format := strings.ToLower(strings.TrimSpace(*logFormat))
		if format != applog.FormatText && format != applog.FormatJSON {
			return nil, false, usageError("invalid --log-format: must be 'text' or 'json'")
		}
		cfg.LogFormat = format
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, usageError(err.Error())
	}

	grouping := core.GroupAll
	switch {
	case *byDate:
		grouping = core.GroupByDate
	case *bySKU:
		grouping = core.GroupBySKU
	}

	return &Invocation{
		Path:      positional[0],
		OutPath:   *out,
		Top:       cfg.Top,
		Grouping:  grouping,
		Engine:    engine.Type(cfg.Engine),
		LogLevel:  cfg.LogLevel,
		LogFormat: cfg.LogFormat,
	}, false, nil
}

// parseInterspersed parses flags wherever they appear and returns the
// positional arguments in order. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		consumed := len(rest) - fs.NArg()
		if consumed > 0 && rest[consumed-1] == "--" {
			return append(positional, fs.Args()...), nil
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}
}

func usageError(msg string) *ExitError {
	return &ExitError{
		Code:    ExitUsage,
		Message: fmt.Sprintf("error: %s\nRun 'sales-cli -h' for usage.", msg),
	}
}
