// Command csvload loads a CSV file into a SQLite database table.
//
// Usage:
//
//	csvload <csv> <database> <table>
//
// The first record of the CSV file is the header; records whose field
// count differs from the header are saved to <csv base>-invalid.csv
// instead of aborting the load.
//
// Configuration is taken from the environment (a .env file in the
// working directory is honored):
//
//	CSVLOAD_BATCH_SIZE   inserts per commit (default 1000)
//	CSVLOAD_CREATE_TABLE create the table from the header ("true"/"1")
//	CSVLOAD_LOG_LEVEL    debug, info, warn, or error (default info)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nao1215/csvload"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()
	setupLogger(os.Getenv("CSVLOAD_LOG_LEVEL"))

	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <csv> <database> <table>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2], os.Args[3]); err != nil {
		slog.Error("load failed", "error", err)
		os.Exit(1)
	}
}

func run(csv, database, table string) error {
	opts, err := optionsFromEnv()
	if err != nil {
		return err
	}

	loader, err := csvload.New(database, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := loader.Close(); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	}()

	slog.Info("loading records", "csv", csv, "database", database, "table", table)
	summary, err := loader.Load(context.Background(), csv, table)
	if err != nil {
		return err
	}

	fmt.Println(summary)
	return nil
}

// optionsFromEnv builds loader options from CSVLOAD_* environment
// variables.
func optionsFromEnv() ([]csvload.Option, error) {
	var opts []csvload.Option

	if v := os.Getenv("CSVLOAD_BATCH_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CSVLOAD_BATCH_SIZE %q: %w", v, err)
		}
		opts = append(opts, csvload.WithBatchSize(size))
	}

	switch strings.ToLower(os.Getenv("CSVLOAD_CREATE_TABLE")) {
	case "1", "true", "yes":
		opts = append(opts, csvload.WithCreateTable())
	}

	return opts, nil
}

// setupLogger configures the default slog logger from the given level.
func setupLogger(level string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
