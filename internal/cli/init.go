package cli

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"sales/internal/config"
	applog "sales/internal/log"
)

// SetupLogger builds the run logger writing to w and installs it as the
// slog default.
func SetupLogger(level, format string, w io.Writer) (*applog.Logger, error) {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		return nil, usageError(err.Error())
	}
	logger := applog.New(applog.Config{
		Level:     lvl,
		Format:    format,
		Output:    w,
		Component: applog.ComponentCLI,
	})
	applog.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads a .env file from the working directory if one exists.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads configuration from the environment. It is validated by
// Parse once command-line overrides are applied.
func LoadConfig() *config.Config {
	return config.Load()
}

// ExitCode maps an error returned by a run to a process exit code: 2 for
// usage and input errors, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if e, ok := asExitError(err); ok {
		return e.Code
	}
	if isUsageOrInput(err) {
		return ExitUsage
	}
	return ExitFailure
}

// Message formats err for stderr.
func Message(err error) string {
	if e, ok := asExitError(err); ok {
		return e.Message
	}
	return fmt.Sprintf("error: %v", err)
}
