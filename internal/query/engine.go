// Package query is the aggregation engine: filtered record sets, KPI
// summaries, single-dimension grouping and Top-N ranking over the stored
// unified dataset.
package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jroldanc/ads-analytics-go/internal/models"
	"github.com/jroldanc/ads-analytics-go/internal/store"
	"github.com/jroldanc/ads-analytics-go/internal/telemetry"
)

// Filter is the predicate set for one query; all parts are ANDed. Empty
// bounds and empty sets match everything. Campaigns match either the
// normalized campaign_id or the display name.
type Filter struct {
	From      string
	To        string
	Platforms []string
	Campaigns []string
}

// key is the canonical cache-key form: set order must not matter.
func (f Filter) key() string {
	platforms := append([]string(nil), f.Platforms...)
	campaigns := append([]string(nil), f.Campaigns...)
	sort.Strings(platforms)
	sort.Strings(campaigns)
	return f.From + "|" + f.To + "|" + strings.Join(platforms, ",") + "|" + strings.Join(campaigns, ",")
}

// Summary is the KPI block over a filtered subset: sums of the additive
// metrics, plus the arithmetic mean of the per-row derived ratios. The means
// are deliberately not recomputed from the sums; they mirror the observable
// behavior the dashboards already show.
type Summary struct {
	Rows        int64   `json:"rows"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
	AvgCTR      float64 `json:"avg_ctr"`
	AvgROAS     float64 `json:"avg_roas"`
	AvgCPC      float64 `json:"avg_cpc"`
}

// GroupRow is one group of a grouped aggregation. Platform carries the fixed
// secondary key when grouping by date or campaign; it is empty when the
// dimension itself is platform.
type GroupRow struct {
	Key         string  `json:"key"`
	Platform    string  `json:"platform,omitempty"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
	AvgCTR      float64 `json:"avg_ctr"`
	AvgROAS     float64 `json:"avg_roas"`
	AvgCPC      float64 `json:"avg_cpc"`
	AvgConvRate float64 `json:"avg_conversion_rate"`
}

// Engine answers queries against one store snapshot. It is read-only and
// safe for concurrent callers; results are memoized per filter keyed with
// the store version, so a rebuild invalidates by changing the version.
type Engine struct {
	st    *store.Store
	cache *lru.Cache[string, []models.AdRecord]
}

func NewEngine(st *store.Store, cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, []models.AdRecord](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	return &Engine{st: st, cache: cache}, nil
}

// Records returns the filtered subset in unified order. An empty result is a
// valid result, not an error.
func (e *Engine) Records(ctx context.Context, f Filter) ([]models.AdRecord, error) {
	version, err := e.st.Version(ctx)
	if err != nil {
		return nil, err
	}
	key := strconv.FormatInt(version, 10) + "|" + f.key()
	if rows, ok := e.cache.Get(key); ok {
		return rows, nil
	}
	start := time.Now()
	rows, err := e.st.Select(ctx, f.From, f.To, f.Platforms, f.Campaigns)
	if err != nil {
		return nil, err
	}
	telemetry.QueryDuration.Observe(time.Since(start).Seconds())
	e.cache.Add(key, rows)
	return rows, nil
}

// Summarize computes the KPI summary over the filtered subset.
func (e *Engine) Summarize(ctx context.Context, f Filter) (Summary, error) {
	rows, err := e.Records(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	var s Summary
	var ctr, roas, cpc float64
	for _, r := range rows {
		s.Impressions += r.Impressions
		s.Clicks += r.Clicks
		s.Conversions += r.Conversions
		s.Cost += r.Cost
		s.Revenue += r.Revenue
		ctr += r.CTR
		roas += r.ROAS
		cpc += r.CPC
	}
	s.Rows = int64(len(rows))
	if n := float64(len(rows)); n > 0 {
		s.AvgCTR = ctr / n
		s.AvgROAS = roas / n
		s.AvgCPC = cpc / n
	}
	return s, nil
}

// GroupBy aggregates the filtered subset by one dimension. Grouping by date
// or campaign keeps platform as a fixed secondary key, mirroring the
// per-platform breakdowns downstream. Groups come back in first-seen unified
// order.
func (e *Engine) GroupBy(ctx context.Context, f Filter, dim models.Dimension) ([]GroupRow, error) {
	rows, err := e.Records(ctx, f)
	if err != nil {
		return nil, err
	}

	type groupKey struct{ key, platform string }
	type acc struct {
		row                  GroupRow
		ctr, roas, cpc, conv float64
		n                    int64
	}
	groups := map[groupKey]*acc{}
	var order []groupKey

	for _, r := range rows {
		var gk groupKey
		switch dim {
		case models.DimDate:
			gk = groupKey{r.Date, r.Platform}
		case models.DimPlatform:
			gk = groupKey{r.Platform, ""}
		case models.DimCampaignID:
			gk = groupKey{r.CampaignID, r.Platform}
		case models.DimCampaignName:
			gk = groupKey{r.CampaignName, r.Platform}
		default:
			return nil, fmt.Errorf("unknown dimension %q", dim)
		}
		a, ok := groups[gk]
		if !ok {
			a = &acc{row: GroupRow{Key: gk.key, Platform: gk.platform}}
			groups[gk] = a
			order = append(order, gk)
		}
		a.row.Impressions += r.Impressions
		a.row.Clicks += r.Clicks
		a.row.Conversions += r.Conversions
		a.row.Cost += r.Cost
		a.row.Revenue += r.Revenue
		a.ctr += r.CTR
		a.roas += r.ROAS
		a.cpc += r.CPC
		a.conv += r.ConversionRate
		a.n++
	}

	out := make([]GroupRow, 0, len(order))
	for _, gk := range order {
		a := groups[gk]
		a.row.AvgCTR = a.ctr / float64(a.n)
		a.row.AvgROAS = a.roas / float64(a.n)
		a.row.AvgCPC = a.cpc / float64(a.n)
		a.row.AvgConvRate = a.conv / float64(a.n)
		out = append(out, a.row)
	}
	return out, nil
}

// TopN ranks a grouped aggregation by metric, descending, and keeps the
// first n groups. The sort is stable over first-seen order, so ties resolve
// to whichever group the unified ordering saw first. n <= 0 means all.
func (e *Engine) TopN(ctx context.Context, f Filter, dim models.Dimension, metric models.Metric, n int) ([]GroupRow, error) {
	groups, err := e.GroupBy(ctx, f, dim)
	if err != nil {
		return nil, err
	}
	value := func(g GroupRow) (float64, error) {
		switch metric {
		case models.MetricImpressions:
			return float64(g.Impressions), nil
		case models.MetricClicks:
			return float64(g.Clicks), nil
		case models.MetricConversions:
			return float64(g.Conversions), nil
		case models.MetricCost:
			return g.Cost, nil
		case models.MetricRevenue:
			return g.Revenue, nil
		case models.MetricCTR:
			return g.AvgCTR, nil
		case models.MetricROAS:
			return g.AvgROAS, nil
		case models.MetricCPC:
			return g.AvgCPC, nil
		case models.MetricConversionRate:
			return g.AvgConvRate, nil
		}
		return 0, fmt.Errorf("unknown metric %q", metric)
	}
	if _, err := value(GroupRow{}); err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool {
		vi, _ := value(groups[i])
		vj, _ := value(groups[j])
		return vi > vj
	})
	if n > 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups, nil
}
