package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/jroldanc/ads-analytics-go/internal/config"
	"github.com/jroldanc/ads-analytics-go/internal/ingest"
)

// Runs the full batch pipeline once: validate raw exports, unify, derive
// metrics, replace the analytical store. Exits non-zero only when no raw
// input exists at all or the store write fails; partial input and repaired
// rows are warnings.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	loader := ingest.NewLoader(cfg.RawDataDir, cfg.Platforms, logger)
	etl := ingest.NewETL(loader, cfg.DBPath, logger)

	report, err := etl.Run(context.Background())
	if err != nil {
		if errors.Is(err, ingest.ErrNoInput) {
			logger.Error("no raw input found", slog.String("dir", cfg.RawDataDir))
		} else {
			logger.Error("pipeline failed", slog.String("err", err.Error()))
		}
		os.Exit(1)
	}

	logger.Info("done",
		slog.Int("rows", report.TotalRows()),
		slog.Int("repaired_cells", report.TotalRepaired()),
		slog.Int("dropped_rows", report.TotalDropped()),
		slog.Any("missing_sources", report.Missing))
}
