package ingest

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const googleCSV = `campaign_id,campaign_name,date,platform,impressions,clicks,conversions,cost,revenue
101,Search Brand,2025-08-01,google_ads,1000,100,10,50.5,200
102,Search Generic,2025-08-02,google_ads,2000,50,5,75,150
`

func TestLoadAllBothSources(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "google_ads.csv", googleCSV)
	writeCSV(t, dir, "facebook_ads.csv",
		"campaign_id,campaign_name,date,platform,impressions,clicks,conversions,cost,revenue\n"+
			"201,Feed Promo,2025-08-01,facebook_ads,500,25,2,20,40\n")

	loader := NewLoader(dir, []string{"google_ads", "facebook_ads"}, testLogger())
	tables, report, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if report.TotalRows() != 3 {
		t.Errorf("total rows = %d, want 3", report.TotalRows())
	}
	if len(report.Missing) != 0 {
		t.Errorf("missing = %v, want none", report.Missing)
	}
	if got := tables[0][0]; got.Impressions != 1000 || got.Cost != 50.5 {
		t.Errorf("first google row = %+v", got)
	}
}

func TestLoadAllPartialInput(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "google_ads.csv", googleCSV)

	loader := NewLoader(dir, []string{"google_ads", "facebook_ads"}, testLogger())
	tables, report, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("partial input must not fail: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if len(report.Missing) != 1 || report.Missing[0] != "facebook_ads" {
		t.Errorf("missing = %v, want [facebook_ads]", report.Missing)
	}
	for _, r := range tables[0] {
		if r.Platform != "google_ads" {
			t.Errorf("unexpected platform %q", r.Platform)
		}
	}
}

func TestLoadAllNoInput(t *testing.T) {
	loader := NewLoader(t.TempDir(), []string{"google_ads", "facebook_ads"}, testLogger())
	_, _, err := loader.LoadAll()
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
}

func TestLoadTableCoercions(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "google_ads.csv",
		"campaign_id,campaign_name,date,platform,impressions,clicks,conversions,cost,revenue\n"+
			"101,Bad Counters,2025-08-01,google_ads,abc,-5,3,1.5,xyz\n"+ // impressions, clicks, revenue repaired
			"102,Bad Date,not-a-date,google_ads,100,10,1,5,10\n"+ // dropped
			"103,Timestamped,2025-08-02 13:45:00,google_ads,100,10,1,5,10\n")

	loader := NewLoader(dir, []string{"google_ads"}, testLogger())
	tables, report, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	rows := tables[0]
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (bad date dropped)", len(rows))
	}
	src := report.Sources[0]
	if src.DroppedRows != 1 {
		t.Errorf("dropped = %d, want 1", src.DroppedRows)
	}
	if src.RepairedCells != 3 {
		t.Errorf("repaired = %d, want 3", src.RepairedCells)
	}
	if rows[0].Impressions != 0 || rows[0].Clicks != 0 || rows[0].Revenue != 0 {
		t.Errorf("coerced row = %+v, want zeroed counters", rows[0])
	}
	if rows[0].Cost != 1.5 {
		t.Errorf("cost = %v, want 1.5 untouched", rows[0].Cost)
	}
	if rows[1].Date != "2025-08-02" {
		t.Errorf("date = %q, want normalized 2025-08-02", rows[1].Date)
	}
}

func TestLoadTablePlatformInherited(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "facebook_ads.csv",
		"campaign_id,campaign_name,date,platform,impressions,clicks,conversions,cost,revenue\n"+
			"201,No Platform,2025-08-01,,100,10,1,5,10\n")

	loader := NewLoader(dir, []string{"facebook_ads"}, testLogger())
	tables, _, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if got := tables[0][0].Platform; got != "facebook_ads" {
		t.Errorf("platform = %q, want inherited facebook_ads", got)
	}
}

func TestLoadTableHeaderOrderFree(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "google_ads.csv",
		"date,clicks,impressions,campaign_id,campaign_name,platform,conversions,revenue,cost\n"+
			"2025-08-01,10,100,101,Reordered,google_ads,1,10,5\n")

	loader := NewLoader(dir, []string{"google_ads"}, testLogger())
	tables, _, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	r := tables[0][0]
	if r.Impressions != 100 || r.Clicks != 10 || r.Cost != 5 || r.Revenue != 10 {
		t.Errorf("row = %+v, header order must not matter", r)
	}
}
