package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jroldanc/ads-analytics-go/internal/models"
	"github.com/jroldanc/ads-analytics-go/internal/telemetry"
)

// ErrNoInput means no platform export was available at all. Partial
// availability is not an error; zero availability is.
var ErrNoInput = errors.New("no raw platform tables available")

// dateLayouts are the accepted raw date formats; everything is reduced to the
// date part.
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// Loader reads and validates the per-platform CSV exports from one raw
// directory. One file per platform, named {platform}.csv.
type Loader struct {
	dir       string
	platforms []string
	log       *slog.Logger
}

func NewLoader(dir string, platforms []string, log *slog.Logger) *Loader {
	return &Loader{dir: dir, platforms: platforms, log: log}
}

// LoadAll loads every available platform table. Missing tables are warned
// about and recorded; LoadAll fails only when every table is missing, before
// anything downstream runs.
func (l *Loader) LoadAll() ([][]models.RawRecord, models.LoadReport, error) {
	var tables [][]models.RawRecord
	var report models.LoadReport
	for _, platform := range l.platforms {
		path := filepath.Join(l.dir, platform+".csv")
		rows, src, err := l.loadTable(path, platform)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				l.log.Warn("source export missing", slog.String("platform", platform), slog.String("path", path))
				report.Missing = append(report.Missing, platform)
				telemetry.SourcesMissing.Inc()
				continue
			}
			return nil, report, fmt.Errorf("load %s: %w", platform, err)
		}
		if src.RepairedCells > 0 || src.DroppedRows > 0 {
			l.log.Warn("source rows repaired",
				slog.String("platform", platform),
				slog.Int("repaired_cells", src.RepairedCells),
				slog.Int("dropped_rows", src.DroppedRows))
		}
		l.log.Info("source loaded", slog.String("platform", platform), slog.Int("rows", src.Rows))
		report.Sources = append(report.Sources, src)
		tables = append(tables, rows)
	}
	if len(tables) == 0 {
		return nil, report, ErrNoInput
	}
	return tables, report, nil
}

func (l *Loader) loadTable(path, platform string) ([]models.RawRecord, models.SourceReport, error) {
	src := models.SourceReport{Platform: platform}
	f, err := os.Open(path)
	if err != nil {
		return nil, src, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, src, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var rows []models.RawRecord
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, src, fmt.Errorf("read row: %w", err)
		}
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}

		date, ok := parseDate(cell("date"))
		if !ok {
			src.DroppedRows++
			telemetry.RowsDropped.Inc()
			continue
		}
		rec := models.RawRecord{
			CampaignID:   cell("campaign_id"),
			CampaignName: cell("campaign_name"),
			Date:         date,
			Platform:     coalesce(cell("platform"), platform),
		}
		rec.Impressions = parseCount(cell("impressions"), &src.RepairedCells)
		rec.Clicks = parseCount(cell("clicks"), &src.RepairedCells)
		rec.Conversions = parseCount(cell("conversions"), &src.RepairedCells)
		rec.Cost = parseAmount(cell("cost"), &src.RepairedCells)
		rec.Revenue = parseAmount(cell("revenue"), &src.RepairedCells)
		rows = append(rows, rec)
		src.Rows++
		telemetry.RowsIngested.WithLabelValues(platform).Inc()
	}
	if src.RepairedCells > 0 {
		telemetry.CellsRepaired.Add(float64(src.RepairedCells))
	}
	return rows, src, nil
}

func parseDate(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// parseAmount coerces a decimal cell; anything non-numeric or negative
// becomes 0 and counts as a repair.
func parseAmount(s string, repaired *int) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		*repaired++
		return 0
	}
	return f
}

// parseCount is parseAmount for integer counters; "10.0" style cells are
// accepted and truncated.
func parseCount(s string, repaired *int) int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		*repaired++
		return 0
	}
	return int64(f)
}

func coalesce(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
