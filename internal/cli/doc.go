// Package cli parses command-line arguments, loads configuration and maps
// failures to process exit codes for cmd/sales-cli.
package cli
