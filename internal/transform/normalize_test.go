package transform

import "testing"

func TestNormalizeCampaignID(t *testing.T) {
	cases := []struct {
		raw, platform, want string
	}{
		{"123", "google_ads", "google_ads_123"},
		{"google_ads_123", "google_ads", "google_ads_123"},
		{"", "google_ads", "google_ads_unknown"},
		{"   ", "facebook_ads", "facebook_ads_unknown"},
		{"42", "facebook_ads", "facebook_ads_42"},
		{" 42 ", "google_ads", "google_ads_42"},
	}
	for _, c := range cases {
		got := NormalizeCampaignID(c.raw, c.platform)
		if got != c.want {
			t.Errorf("NormalizeCampaignID(%q, %q) = %q, want %q", c.raw, c.platform, got, c.want)
		}
	}
}

func TestNormalizeCampaignIDIdempotent(t *testing.T) {
	for _, raw := range []string{"", "123", "google_ads_123", "weird id", "google_ads_unknown"} {
		once := NormalizeCampaignID(raw, "google_ads")
		twice := NormalizeCampaignID(once, "google_ads")
		if once != twice {
			t.Errorf("normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeKeepsPlatformsDisjoint(t *testing.T) {
	a := NormalizeCampaignID("42", "google_ads")
	b := NormalizeCampaignID("42", "facebook_ads")
	if a == b {
		t.Fatalf("same raw id on two platforms collided: %q", a)
	}
}
