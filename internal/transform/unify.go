package transform

import (
	"sort"

	"github.com/jroldanc/ads-analytics-go/internal/models"
)

// Unify concatenates the validated per-platform tables, normalizes campaign
// ids, derives metrics and sorts the result. The ordering — date descending,
// platform ascending, campaign_id ascending, stable — is a contract consumed
// by "most recent first" displays and by the first-seen tie-break in Top-N.
func Unify(tables ...[]models.RawRecord) []models.AdRecord {
	var out []models.AdRecord
	for _, table := range tables {
		for _, r := range table {
			rec := models.AdRecord{
				CampaignID:   NormalizeCampaignID(r.CampaignID, r.Platform),
				CampaignName: r.CampaignName,
				Date:         r.Date,
				Platform:     r.Platform,
				Impressions:  r.Impressions,
				Clicks:       r.Clicks,
				Conversions:  r.Conversions,
				Cost:         r.Cost,
				Revenue:      r.Revenue,
			}
			Derive(&rec)
			out = append(out, rec)
		}
	}
	// Dates are YYYY-MM-DD, so string order is chronological order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].CampaignID < out[j].CampaignID
	})
	return out
}
