package catalog

import "strconv"

// durationKeys are the attribute aliases scanned for a duration, in order.
// Providers disagree on the attribute name.
var durationKeys = []string{"tvg-duration", "tvg-duration-secs", "duration", "duration_secs"}

// extractDuration returns a positive duration in seconds from playlist
// attributes. Falls back to 1 when the value is missing or invalid: a
// positive sentinel avoids the -1 placeholder some clients interpret as
// live content.
func extractDuration(attrs map[string]string) int {
	for _, key := range durationKeys {
		val := attrs[key]
		if val == "" {
			continue
		}
		secs, err := strconv.ParseFloat(val, 64)
		if err != nil {
			continue
		}
		if int(secs) > 0 {
			return int(secs)
		}
	}
	return 1
}
