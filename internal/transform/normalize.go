package transform

import "strings"

// NormalizeCampaignID produces the globally unique campaign id for a raw id
// coming from one platform. Platforms share numeric id spaces, so ids are
// prefixed with the platform name; an id that already carries the prefix is
// passed through, which makes the function idempotent.
func NormalizeCampaignID(raw, platform string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return platform + "_unknown"
	}
	if !strings.HasPrefix(raw, platform) {
		return platform + "_" + raw
	}
	return raw
}
