package models

import "fmt"

// RawRecord is one validated row from a per-platform export, before
// normalization and metric derivation. Date is already reduced to YYYY-MM-DD
// and numeric cells are coerced; rows with unparsable dates never become a
// RawRecord.
type RawRecord struct {
	CampaignID   string
	CampaignName string
	Date         string
	Platform     string
	Impressions  int64
	Clicks       int64
	Conversions  int64
	Cost         float64
	Revenue      float64
}

// AdRecord is one row of the unified dataset: the raw columns plus the four
// derived efficiency metrics. Derived fields are computed exactly once, at
// unification time, and never mutated independently.
type AdRecord struct {
	CampaignID     string  `json:"campaign_id"`
	CampaignName   string  `json:"campaign_name"`
	Date           string  `json:"date"`
	Platform       string  `json:"platform"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Conversions    int64   `json:"conversions"`
	Cost           float64 `json:"cost"`
	Revenue        float64 `json:"revenue"`
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	ROAS           float64 `json:"roas"`
	ConversionRate float64 `json:"conversion_rate"`
}

// SourceReport is the per-platform trace of what the validator did.
type SourceReport struct {
	Platform      string `json:"platform"`
	Rows          int    `json:"rows"`
	RepairedCells int    `json:"repaired_cells"`
	DroppedRows   int    `json:"dropped_rows"`
}

// LoadReport aggregates validator traces for one pipeline run. Missing lists
// platforms whose export was absent; the run only fails when every source is
// missing.
type LoadReport struct {
	Sources []SourceReport `json:"sources"`
	Missing []string       `json:"missing"`
}

func (r LoadReport) TotalRows() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Rows
	}
	return n
}

func (r LoadReport) TotalRepaired() int {
	n := 0
	for _, s := range r.Sources {
		n += s.RepairedCells
	}
	return n
}

func (r LoadReport) TotalDropped() int {
	n := 0
	for _, s := range r.Sources {
		n += s.DroppedRows
	}
	return n
}

// Dimension is a recognized grouping dimension. The set is closed on purpose:
// unknown names are rejected instead of reflected over.
type Dimension string

const (
	DimDate         Dimension = "date"
	DimPlatform     Dimension = "platform"
	DimCampaignID   Dimension = "campaign_id"
	DimCampaignName Dimension = "campaign_name"
)

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimDate, DimPlatform, DimCampaignID, DimCampaignName:
		return Dimension(s), nil
	}
	return "", fmt.Errorf("unknown dimension %q (want date, platform, campaign_id or campaign_name)", s)
}

// Metric is a recognized ranking/selection metric: the additive raw counters
// and amounts, or the derived ratios.
type Metric string

const (
	MetricImpressions    Metric = "impressions"
	MetricClicks         Metric = "clicks"
	MetricConversions    Metric = "conversions"
	MetricCost           Metric = "cost"
	MetricRevenue        Metric = "revenue"
	MetricCTR            Metric = "ctr"
	MetricCPC            Metric = "cpc"
	MetricROAS           Metric = "roas"
	MetricConversionRate Metric = "conversion_rate"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricImpressions, MetricClicks, MetricConversions, MetricCost, MetricRevenue,
		MetricCTR, MetricCPC, MetricROAS, MetricConversionRate:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}
