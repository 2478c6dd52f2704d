package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jroldanc/ads-analytics-go/internal/models"
	"github.com/jroldanc/ads-analytics-go/internal/store"
	"github.com/jroldanc/ads-analytics-go/internal/telemetry"
	"github.com/jroldanc/ads-analytics-go/internal/transform"
)

// ETL runs the full batch: load and validate the raw exports, unify and
// derive, then replace the analytical table. Strictly sequential, one writer
// per run. The store is only opened after the load succeeds, so a run that
// fails for lack of input never touches the prior store.
type ETL struct {
	loader *Loader
	dbPath string
	log    *slog.Logger
}

func NewETL(loader *Loader, dbPath string, log *slog.Logger) *ETL {
	return &ETL{loader: loader, dbPath: dbPath, log: log}
}

func (e *ETL) Run(ctx context.Context) (models.LoadReport, error) {
	tables, report, err := e.loader.LoadAll()
	if err != nil {
		telemetry.PipelineRuns.WithLabelValues("failed").Inc()
		return report, err
	}

	unified := transform.Unify(tables...)

	st, err := store.Open(e.dbPath, e.log)
	if err != nil {
		telemetry.PipelineRuns.WithLabelValues("failed").Inc()
		return report, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.Replace(ctx, unified); err != nil {
		telemetry.PipelineRuns.WithLabelValues("failed").Inc()
		return report, fmt.Errorf("write store: %w", err)
	}

	telemetry.PipelineRuns.WithLabelValues("ok").Inc()
	e.log.Info("pipeline complete",
		slog.Int("rows", len(unified)),
		slog.Int("repaired_cells", report.TotalRepaired()),
		slog.Int("dropped_rows", report.TotalDropped()),
		slog.Int("missing_sources", len(report.Missing)))
	return report, nil
}
