package transform

import "github.com/jroldanc/ads-analytics-go/internal/models"

// Derive fills the four efficiency metrics from the raw counters. A zero
// denominator means "no activity, no rate to report" and yields 0, never
// NaN/Inf. Rounding is half-up to two decimals, applied exactly once here.
func Derive(r *models.AdRecord) {
	r.CTR = Round2(safeDiv(float64(r.Clicks), float64(r.Impressions)) * 100)
	r.CPC = Round2(safeDiv(r.Cost, float64(r.Clicks)))
	r.ROAS = Round2(safeDiv(r.Revenue, r.Cost))
	r.ConversionRate = Round2(safeDiv(float64(r.Conversions), float64(r.Clicks)) * 100)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Round2 rounds half-up to two decimals. Inputs are non-negative by the time
// they get here, so the +0.5 trick is safe.
func Round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
