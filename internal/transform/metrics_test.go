package transform

import (
	"testing"

	"github.com/jroldanc/ads-analytics-go/internal/models"
)

func TestDerive(t *testing.T) {
	r := models.AdRecord{Impressions: 100, Clicks: 10, Conversions: 2, Cost: 25, Revenue: 100}
	Derive(&r)

	if r.CTR != 10.0 {
		t.Errorf("ctr = %v, want 10.0", r.CTR)
	}
	if r.CPC != 2.5 {
		t.Errorf("cpc = %v, want 2.5", r.CPC)
	}
	if r.ROAS != 4.0 {
		t.Errorf("roas = %v, want 4.0", r.ROAS)
	}
	if r.ConversionRate != 20.0 {
		t.Errorf("conversion_rate = %v, want 20.0", r.ConversionRate)
	}
}

func TestDeriveZeroDenominators(t *testing.T) {
	// No activity means a 0 rate, never NaN/Inf or a panic.
	r := models.AdRecord{Impressions: 0, Clicks: 0, Conversions: 0, Cost: 0, Revenue: 50}
	Derive(&r)

	for name, got := range map[string]float64{
		"ctr": r.CTR, "cpc": r.CPC, "roas": r.ROAS, "conversion_rate": r.ConversionRate,
	} {
		if got != 0 {
			t.Errorf("%s = %v, want 0 on zero denominator", name, got)
		}
	}
}

func TestDeriveRoundsToTwoDecimals(t *testing.T) {
	// 1 click over 3 impressions is 33.333...%, 10 cost over 3 clicks is
	// 3.333...
	r := models.AdRecord{Impressions: 3, Clicks: 1, Cost: 10, Revenue: 0}
	Derive(&r)
	if r.CTR != 33.33 {
		t.Errorf("ctr = %v, want 33.33", r.CTR)
	}

	r = models.AdRecord{Impressions: 100, Clicks: 3, Cost: 10}
	Derive(&r)
	if r.CPC != 3.33 {
		t.Errorf("cpc = %v, want 3.33", r.CPC)
	}
}

func TestRound2HalfUp(t *testing.T) {
	// 0.125 is exact in binary, so the .5 boundary is really hit: half-up
	// gives 0.13 where half-even would give 0.12.
	if got := Round2(0.125); got != 0.13 {
		t.Errorf("Round2(0.125) = %v, want 0.13", got)
	}
	if got := Round2(0.124); got != 0.12 {
		t.Errorf("Round2(0.124) = %v, want 0.12", got)
	}
	if got := Round2(7); got != 7.0 {
		t.Errorf("Round2(7) = %v, want 7.0", got)
	}
}
