package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"sales/internal/cli"
	"sales/internal/core"
	"sales/internal/engine"
	applog "sales/internal/log"
	"sales/internal/salesfile"
	"sales/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.Message(err))
		os.Exit(cli.ExitCode(err))
	}
}

// run executes one invocation. The report goes to stdout only after every
// step, including the optional CSV file, has succeeded.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	cli.LoadEnvFile()

	cfg := cli.LoadConfig()
	inv, shouldExit, err := cli.Parse(args, cfg, stdout)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger, err := cli.SetupLogger(inv.LogLevel, inv.LogFormat, stderr)
	if err != nil {
		return err
	}

	svc := services.NewReportService(engine.NewFactory(logger), logger)
	res, err := svc.Run(ctx, services.Options{
		Path:     inv.Path,
		OutPath:  inv.OutPath,
		Grouping: inv.Grouping,
		Top:      inv.Top,
		Engine:   inv.Engine,
		Columns: salesfile.Columns{
			Amount: cfg.AmountColumn,
			Date:   cfg.DateColumn,
			SKU:    cfg.SKUColumn,
		},
		GroupAllKey:   core.GroupKey(cfg.GroupAllKey),
		DateCacheSize: cfg.DateCacheSize,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Report failed", applog.NewFields().
			WithOperation(operation(err)).
			WithError(err).
			WithErrorType(errorType(err)).
			ToSlice()...)
		return err
	}

	if _, err := stdout.Write(res.Table); err != nil {
		return fmt.Errorf("write report to stdout: %w", err)
	}
	return nil
}

func operation(err error) string {
	var outputErr *core.OutputError
	if errors.As(err, &outputErr) {
		return applog.OpWrite
	}
	return applog.OpRead
}

func errorType(err error) string {
	var (
		schemaErr     *core.SchemaError
		validationErr *core.ValidationError
		outputErr     *core.OutputError
	)
	switch {
	case errors.Is(err, core.ErrFileNotFound):
		return applog.ErrorTypeNotFound
	case errors.As(err, &schemaErr):
		return applog.ErrorTypeSchema
	case errors.As(err, &validationErr):
		return applog.ErrorTypeValidation
	case errors.As(err, &outputErr), errors.Is(err, core.ErrUnreadable):
		return applog.ErrorTypeIO
	case errors.Is(err, core.ErrInvalidTop):
		return applog.ErrorTypeUsage
	default:
		return applog.ErrorTypeInternal
	}
}
