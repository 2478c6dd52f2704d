// Package store persists the unified dataset in SQLite and reads it back in
// unified order for the aggregation engine.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jroldanc/ads-analytics-go/internal/models"
)

// TableName is the fixed analytical table holding the unified dataset.
const TableName = "ads_analytics"

const stagingTable = TableName + "_staging"

// ErrNotLoaded means the analytical table does not exist yet: the pipeline
// has never completed against this store.
var ErrNotLoaded = errors.New("unified dataset not loaded; run the pipeline")

const createColumns = `(
	campaign_id     TEXT NOT NULL,
	campaign_name   TEXT NOT NULL,
	date            TEXT NOT NULL,
	platform        TEXT NOT NULL,
	impressions     INTEGER NOT NULL,
	clicks          INTEGER NOT NULL,
	conversions     INTEGER NOT NULL,
	cost            REAL NOT NULL,
	revenue         REAL NOT NULL,
	ctr             REAL NOT NULL,
	cpc             REAL NOT NULL,
	roas            REAL NOT NULL,
	conversion_rate REAL NOT NULL
)`

// Store wraps one SQLite handle. A single pipeline run is the only writer;
// readers may be concurrent, and WAL mode lets them see the prior complete
// snapshot while a rebuild is in flight.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the store at path and applies the session pragmas.
func Open(path string, log *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	path = filepath.Clean(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Replace swaps in records as the complete new dataset. The staging insert,
// the drop of the old table, the rename and the version bump share one
// transaction: a failure at any point rolls back and leaves the prior
// dataset intact, and readers never observe a mix of old and new rows.
func (s *Store) Replace(ctx context.Context, records []models.AdRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	// A leftover staging table from a crashed run is dead weight.
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+stagingTable); err != nil {
		return fmt.Errorf("drop stale staging: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+stagingTable+" "+createColumns); err != nil {
		return fmt.Errorf("create staging: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+stagingTable+`
		(campaign_id, campaign_name, date, platform, impressions, clicks, conversions,
		 cost, revenue, ctr, cpc, roas, conversion_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.CampaignID, r.CampaignName, r.Date, r.Platform,
			r.Impressions, r.Clicks, r.Conversions,
			r.Cost, r.Revenue, r.CTR, r.CPC, r.ROAS, r.ConversionRate); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+TableName); err != nil {
		return fmt.Errorf("drop old table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "ALTER TABLE "+stagingTable+" RENAME TO "+TableName); err != nil {
		return fmt.Errorf("swap in staging: %w", err)
	}

	// user_version is the freshness token query memoization keys on.
	version, err := versionTx(ctx, tx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version+1)); err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	s.buildIndexes(ctx)
	return nil
}

// buildIndexes creates the secondary lookup indexes. Failure is non-fatal:
// the table stays queryable, just slower.
func (s *Store) buildIndexes(ctx context.Context) {
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_ads_date ON " + TableName + "(date)",
		"CREATE INDEX IF NOT EXISTS idx_ads_platform ON " + TableName + "(platform)",
		"CREATE INDEX IF NOT EXISTS idx_ads_campaign ON " + TableName + "(campaign_id)",
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.log.Warn("index build failed", slog.String("stmt", stmt), slog.String("err", err.Error()))
		}
	}
}

// Version reads the store freshness token. 0 means no replace has ever
// committed.
func (s *Store) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return v, nil
}

func versionTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var v int64
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return v, nil
}

// Select returns the rows matching the ANDed predicates, in unified order.
// Empty from/to leave that bound open; empty sets match everything. The
// campaign set matches either the normalized id or the display name, since
// callers know campaigns by both.
func (s *Store) Select(ctx context.Context, from, to string, platforms, campaigns []string) ([]models.AdRecord, error) {
	var where []string
	var args []any
	if from != "" {
		where = append(where, "date >= ?")
		args = append(args, from)
	}
	if to != "" {
		where = append(where, "date <= ?")
		args = append(args, to)
	}
	if len(platforms) > 0 {
		where = append(where, "platform IN ("+placeholders(len(platforms))+")")
		for _, p := range platforms {
			args = append(args, p)
		}
	}
	if len(campaigns) > 0 {
		ph := placeholders(len(campaigns))
		where = append(where, "(campaign_id IN ("+ph+") OR campaign_name IN ("+ph+"))")
		for i := 0; i < 2; i++ {
			for _, c := range campaigns {
				args = append(args, c)
			}
		}
	}
	q := `SELECT campaign_id, campaign_name, date, platform, impressions, clicks, conversions,
		cost, revenue, ctr, cpc, roas, conversion_rate FROM ` + TableName
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date DESC, platform ASC, campaign_id ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, ErrNotLoaded
		}
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	var out []models.AdRecord
	for rows.Next() {
		var r models.AdRecord
		if err := rows.Scan(&r.CampaignID, &r.CampaignName, &r.Date, &r.Platform,
			&r.Impressions, &r.Clicks, &r.Conversions,
			&r.Cost, &r.Revenue, &r.CTR, &r.CPC, &r.ROAS, &r.ConversionRate); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
